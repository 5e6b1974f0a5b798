package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

type PlanListReq struct {
	g.Meta `path:"/v1/plans" method:"get" tags:"plans" summary:"List available plans"`
}

type PlanListRes struct {
	Plans []PlanItem `json:"plans"`
}

type PlanItem struct {
	Code          string `json:"code"`
	Title         string `json:"title"`
	PriceRub      int    `json:"price_rub"`
	PeriodDays    int    `json:"period_days"`
	MaxConnectors int    `json:"max_connectors"`
}
