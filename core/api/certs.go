/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package api

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"io/ioutil"
	"os"
	"path"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/util"
)

func GetServerTLSConfig(tlsCfg *config.TLSConfig) (*tls.Config, error) {
	var err error
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{
			tls.CurveP256,
			tls.CurveP384,
			tls.X25519, // Go 1.8 only
		},
		PreferServerCipherSuites: true,
		InsecureSkipVerify:       tlsCfg.TLSInsecureSkipVerify,
		SessionTicketsDisabled:   false,
		ClientSessionCache:       tls.NewLRUClientSessionCache(128),
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305, // Go 1.8 only
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,   // Go 1.8 only
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
			tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_RSA_WITH_AES_256_CBC_SHA,
		},
		NextProtos: []string{"h2", "http/1.1"},
	}

	//try self-signed certs
	if tlsCfg.TLSCertFile == "" && tlsCfg.TLSKeyFile == "" {
		dataDir := global.Env().GetDataDir()
		tlsCfg.TLSCertFile = path.Join(dataDir, "certs/instance.crt")
		tlsCfg.TLSKeyFile = path.Join(dataDir, "certs/instance.key")
		tlsCfg.TLSCACertFile = path.Join(dataDir, "certs/ca.crt")
		caKey := path.Join(dataDir, "certs/ca.key")
		if !(util.FileExists(tlsCfg.TLSCACertFile) && util.FileExists(tlsCfg.TLSCertFile) && util.FileExists(tlsCfg.TLSKeyFile)) {
			err = os.MkdirAll(path.Join(dataDir, "certs"), 0775)
			if err != nil {
				return nil, err
			}
			log.Info("auto generating cert files")
			rootCert, rootKey, rootCertPEM = util.GetRootCert()
			if tlsCfg.DefaultDomain == "" {
				tlsCfg.DefaultDomain = "localhost"
			}
			instanceCertPEM, instanceKeyPEM, err := util.GenerateServerCert(rootCert, rootKey, rootCertPEM, []string{tlsCfg.DefaultDomain})
			if err != nil {
				return nil, err
			}
			caKeyPEM := pem.EncodeToMemory(&pem.Block{
				Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rootKey),
			})

			_, err = util.FilePutContentWithByte(caKey, caKeyPEM)
			if err != nil {
				return nil, err
			}

			util.FilePutContentWithByte(tlsCfg.TLSCACertFile, rootCertPEM)
			util.FilePutContentWithByte(tlsCfg.TLSCertFile, instanceCertPEM)
			util.FilePutContentWithByte(tlsCfg.TLSKeyFile, instanceKeyPEM)
		}
	}

	//load cert files
	cfg.Certificates = make([]tls.Certificate, 1)
	cfg.Certificates[0], err = tls.LoadX509KeyPair(tlsCfg.TLSCertFile, tlsCfg.TLSKeyFile)

	//setup if need verify certs
	if !tlsCfg.TLSInsecureSkipVerify {
		if certPool == nil {
			certPool = x509.NewCertPool()
		}
		if len(rootCertPEM) == 0 && util.FileExists(tlsCfg.TLSCACertFile) {
			rootCertPEM, err = ioutil.ReadFile(tlsCfg.TLSCACertFile)
			if err != nil {
				return nil, err
			}
		}
		certPool.AppendCertsFromPEM(rootCertPEM)
		cfg.ClientCAs = certPool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
		log.Info("TLS client required to verify client cert")
	}
	return cfg, err
}
