/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package api

import (
	"net/http"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/api"
	httprouter "infini.sh/shift/core/api/router"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/logger"
	"infini.sh/shift/core/util"
)

func init() {
	api.HandleAPIFunc("/setting/logger", LoggingSettingAction)
	api.HandleAPIMethod(api.GET, "/setting/auth", authAPIHandler)
}

// LoggingSettingAction reads or replaces the logging configuration at
// runtime, which turns debug output on for a long running copy without
// restarting it.
func LoggingSettingAction(w http.ResponseWriter, req *http.Request) {
	if req.Method == api.GET.String() {
		cfg := logger.GetLoggingConfig()
		if cfg != nil {
			api.DefaultAPI.WriteJSON(w, cfg, 200)
		} else {
			api.DefaultAPI.Error500(w, "config not available")
		}
	} else if req.Method == api.PUT.String() || req.Method == api.POST.String() {
		cfg := config.LoggingConfig{}
		if err := api.DefaultAPI.DecodeJSON(req, &cfg); err != nil {
			api.DefaultAPI.Error400(w, err.Error())
			return
		}
		log.Debug("receive new logging settings:", util.ToJson(cfg, false))
		logger.SetLogging(&cfg, global.Env().GetAppLowercaseName(), global.Env().GetLogDir())
		api.DefaultAPI.WriteAckOKJSON(w)
	}
}

// authAPIHandler tells a client whether the management API expects basic
// auth before it sends credentials.
func authAPIHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	api.DefaultAPI.WriteJSON(w, util.MapStr{
		"enabled": global.Env().SystemConfig.APIConfig.Security.Enabled,
	}, 200)
}
