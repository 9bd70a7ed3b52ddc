package util

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	log "github.com/cihub/seelog"
)

// TestPort check port availability
func TestPort(port int) bool {
	host := ":" + strconv.Itoa(port)
	ln, err := net.Listen("tcp", host)
	if ln != nil {
		err := ln.Close()
		if err != nil {
			panic(err)
		}
	}

	if err != nil {
		log.Debugf("can't listen on port %s, %s", host, err)
		return false
	}
	return true
}

func WaitServerUp(addr string, duration time.Duration) error {
	start := time.Now()
	d := net.Dialer{Timeout: duration}
check:
	conn, err := d.Dial("tcp", addr)
	if conn != nil {
		conn.Close()
	}
	if err != nil {
		log.Trace("still not there, ", addr)
		goto wait
	}
	return nil

wait:
	if time.Now().Sub(start) > duration {
		log.Trace("retry enough, forget about it")
		return errors.New("timeout")
	}

	time.Sleep(100 * time.Millisecond)
	goto check
}

// TestListenPort check availability of port with ip
func TestListenPort(ip string, port int) bool {

	log.Tracef("testing port %s:%d", ip, port)
	host := ip + ":" + strconv.Itoa(port)
	ln, err := net.Listen("tcp", host)
	if ln != nil {
		err := ln.Close()
		if err != nil {
			panic(err)
		}
	}

	if err != nil {
		log.Debugf("can't listen on port %s, %s", host, err)
		return false
	}
	return true
}

// GetAvailablePort get valid port to listen, if the specify port is not available, auto choose the next one
func GetAvailablePort(ip string, port int) int {

	maxRetry := 500

	for i := 0; i < maxRetry; i++ {
		ok := TestListenPort(ip, port)
		if ok {
			log.Trace("get available port: ", port)
			return port
		}
		port++
	}

	panic(errors.New("no ports available"))
}

// AutoGetAddress get valid address to listen, if the specify port is not available, auto choose the next one
func AutoGetAddress(addr string) string {
	if strings.Index(addr, ":") < 0 {
		panic(errors.New("invalid address, eg ip:port, " + addr))
	}

	array := strings.Split(addr, ":")
	p, _ := strconv.Atoi(array[1])
	port := GetAvailablePort(GetSafetyInternalAddress(array[0]), p)
	array[1] = strconv.Itoa(port)
	return strings.Join(array, ":")
}

func GetSafetyInternalAddress(addr string) string {

	if strings.Contains(addr, ":") {
		array := strings.Split(addr, ":")
		if array[0] == "0.0.0.0" {
			array[0], _ = GetIntranetIP()
		}
		return strings.Join(array, ":")
	}

	return addr
}

// GetValidAddress get valid address, input: :8001 -> output: 127.0.0.1:8001
func GetValidAddress(addr string) string {
	if strings.Index(addr, ":") >= 0 {
		array := strings.Split(addr, ":")
		if len(array[0]) == 0 {
			array[0] = "127.0.0.1"
			addr = strings.Join(array, ":")
		}
	}
	return addr
}

func GetIntranetIP() (string, error) {
	addrs, err := net.InterfaceAddrs()

	if err != nil {
		return "", err
	}

	for _, address := range addrs {

		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "", errors.New("can't get intranet ip")
}
