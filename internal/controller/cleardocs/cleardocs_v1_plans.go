package cleardocs

import (
	"context"

	v1 "github.com/cleardocs/backend/api/cleardocs/v1"
	"github.com/cleardocs/backend/internal/service"
)

func (c *ControllerV1) PlanList(ctx context.Context, req *v1.PlanListReq) (res *v1.PlanListRes, err error) {
	plans, err := service.Plan().List(ctx)
	if err != nil {
		return nil, err
	}
	res = &v1.PlanListRes{Plans: make([]v1.PlanItem, 0, len(plans))}
	for _, p := range plans {
		res.Plans = append(res.Plans, v1.PlanItem{
			Code:          p.Code,
			Title:         p.Title,
			PriceRub:      p.PriceRub,
			PeriodDays:    p.PeriodDays,
			MaxConnectors: p.MaxConnectors(),
		})
	}
	return res, nil
}
