/* ©INFINI, All Rights Reserved.
 * mail: contact#infini.ltd */

package adapter

// ESAPIV8 drives 8.x clusters. include_type_name is gone there and every
// index the cluster can hold is already typeless, so create falls back to
// the plain base behavior.
type ESAPIV8 struct {
	ESAPIV7
}

func (c *ESAPIV8) CreateIndex(indexName string, settings map[string]interface{}) (err error) {
	return c.ESAPIV0.CreateIndex(indexName, settings)
}
