package v1

import (
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"

	"github.com/cleardocs/backend/core/onyx"
)

type ConnectorListReq struct {
	g.Meta `path:"/v1/connectors" method:"get" tags:"connectors" summary:"List connectors"`
}

type ConnectorListRes struct {
	Connectors []onyx.Connector `json:"connectors"`
	CanAdd     bool             `json:"canAdd" dc:"whether the plan limit allows one more connector"`
}

type ConnectorCreateFileReq struct {
	g.Meta `path:"/v1/connectors" method:"post" tags:"connectors" summary:"Create file connector" mime:"multipart/form-data"`
	Name   string              `p:"name" v:"required|length:1,255" dc:"connector name"`
	Files  []*ghttp.UploadFile `p:"files" type:"file" v:"required" dc:"documents to index"`
}

type ConnectorCreateFileRes struct {
	ID     int    `json:"id" dc:"cc-pair id"`
	Name   string `json:"name" dc:"final connector name after uniquification"`
	Source string `json:"source"`
}

type ConnectorCreateURLReq struct {
	g.Meta `path:"/v1/connectors/url" method:"post" tags:"connectors" summary:"Create web connector"`
	Name   string `json:"name" v:"required|length:1,255" dc:"connector name"`
	URL    string `json:"url" v:"required|url" dc:"site base url, crawled recursively"`
}

type ConnectorCreateURLRes struct {
	ID     int    `json:"id" dc:"cc-pair id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

type ConnectorUpdateReq struct {
	g.Meta `path:"/v1/connectors/{id}" method:"patch" tags:"connectors" summary:"Pause or resume connector"`
	ID     int    `v:"required" dc:"cc-pair id"`
	Status string `json:"status" v:"required" dc:"paused or active, case-insensitive"`
}

type ConnectorUpdateRes struct{}

type ConnectorDeleteReq struct {
	g.Meta `path:"/v1/connectors/{id}" method:"delete" tags:"connectors" summary:"Delete connector"`
	ID     int `v:"required" dc:"cc-pair id"`
}

type ConnectorDeleteRes struct{}
