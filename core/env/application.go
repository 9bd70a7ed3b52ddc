/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package env

type Application struct {
	Name    string  `json:"name,omitempty"`
	Version Version `json:"version,omitempty"`
	Tagline string  `json:"tagline,omitempty"`
}

func (env *Env) GetApplicationInfo() Application {
	return Application{
		Name:    env.name,
		Tagline: env.desc,
		Version: env.GetVersionInfo(),
	}
}
