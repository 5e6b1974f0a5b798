package service

import (
	"sync"

	"github.com/gogf/gf/v2/os/gctx"

	"github.com/cleardocs/backend/core/onyx"
	"github.com/cleardocs/backend/internal/auth"
	"github.com/cleardocs/backend/internal/dao"
	"github.com/cleardocs/backend/internal/logic/account"
	"github.com/cleardocs/backend/internal/logic/chat"
	"github.com/cleardocs/backend/internal/logic/connector"
	"github.com/cleardocs/backend/internal/logic/plan"
)

var (
	onyxOnce   sync.Once
	onyxClient *onyx.Client

	verifierOnce sync.Once
	verifier     auth.Verifier

	planOnce sync.Once
	planSvc  *plan.Service

	accountOnce sync.Once
	accountSvc  *account.Service

	connectorOnce sync.Once
	connectorSvc  *connector.Service

	chatOnce sync.Once
	chatSvc  *chat.Service
)

// Onyx returns the singleton knowledge base client
func Onyx() *onyx.Client {
	onyxOnce.Do(func() {
		onyxClient = onyx.New(gctx.New())
	})
	return onyxClient
}

// Auth returns the singleton identity verifier
func Auth() auth.Verifier {
	verifierOnce.Do(func() {
		verifier = auth.NewRemoteVerifier(gctx.New())
	})
	return verifier
}

// Plan returns the singleton plan catalog service
func Plan() *plan.Service {
	planOnce.Do(func() {
		planSvc = plan.NewService()
	})
	return planSvc
}

// Account returns the singleton account resolution service
func Account() *account.Service {
	accountOnce.Do(func() {
		accountSvc = account.NewService(dao.Account, Plan())
	})
	return accountSvc
}

// Connector returns the singleton connector lifecycle service
func Connector() *connector.Service {
	connectorOnce.Do(func() {
		connectorSvc = connector.NewService(Onyx(), dao.Account)
	})
	return connectorSvc
}

// Chat returns the singleton chat service
func Chat() *chat.Service {
	chatOnce.Do(func() {
		chatSvc = chat.NewService(Onyx(), dao.Account)
	})
	return chatSvc
}
