/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package module

import "infini.sh/shift/core/config"

// Module defines system level module structure
type Module interface {
	Setup(cfg *config.Config)
	Start() error
	Stop() error
	Name() string
}

////implement template
//type Module struct {
//}
//func (this *Module) Setup(cfg *config.Config) {
//
//}
//func (this *Module) Start() error {
//	return nil
//}
//func (this *Module) Stop() error {
//	return nil
//}
//func (this *Module) Name() string {
//	return "NAME"
//}
