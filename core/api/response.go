/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package api

// Response is the ack body of a write style endpoint, shaped like the
// acknowledgements elasticsearch itself answers with.
type Response struct {
	Id     interface{} `json:"_id,omitempty"`
	Result string      `json:"result,omitempty"`
}

// FoundResp is the body of a lookup endpoint, found tells whether the id
// resolved, _source carries the object when it did.
type FoundResp struct {
	Found  bool        `json:"found"`
	Id     interface{} `json:"_id,omitempty"`
	Source interface{} `json:"_source,omitempty"`
}

func CreateResponse(id interface{}) Response {
	return Response{
		Id:     id,
		Result: "created",
	}
}

func NotFoundResponse(id interface{}) FoundResp {
	return FoundResp{
		Id:    id,
		Found: false,
	}
}

func FoundResponse(id, data interface{}) FoundResp {
	return FoundResp{
		Id:     id,
		Found:  true,
		Source: data,
	}
}
