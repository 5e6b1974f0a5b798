package cleardocs

import (
	"context"

	v1 "github.com/cleardocs/backend/api/cleardocs/v1"
	"github.com/cleardocs/backend/internal/logic/account"
)

func (c *ControllerV1) Me(ctx context.Context, req *v1.MeReq) (res *v1.MeRes, err error) {
	acct, err := account.FromCtx(ctx)
	if err != nil {
		return nil, err
	}
	res = &v1.MeRes{
		ID:       acct.ID,
		Email:    acct.Email,
		Name:     acct.Name,
		DocSetID: acct.DocSetID,
	}
	if acct.Plan != nil {
		res.PlanCode = acct.Plan.Code
		res.PlanTitle = acct.Plan.Title
	}
	return res, nil
}
