package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

type MeReq struct {
	g.Meta `path:"/v1/users/me" method:"get" tags:"users" summary:"Get current account"`
}

type MeRes struct {
	ID        string `json:"id" dc:"account id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	PlanCode  string `json:"plan_code"`
	PlanTitle string `json:"plan_title"`
	DocSetID  *int   `json:"doc_set_id,omitempty" dc:"knowledge base document set id, nil until first connector"`
}
