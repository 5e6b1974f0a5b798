package cleardocs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gfile"
	"github.com/google/uuid"

	v1 "github.com/cleardocs/backend/api/cleardocs/v1"
	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/internal/logic/account"
	"github.com/cleardocs/backend/internal/service"
)

func (c *ControllerV1) ConnectorList(ctx context.Context, req *v1.ConnectorListReq) (res *v1.ConnectorListRes, err error) {
	acct, err := account.FromCtx(ctx)
	if err != nil {
		return nil, err
	}
	result := service.Connector().List(ctx, acct)
	return &v1.ConnectorListRes{
		Connectors: result.Connectors,
		CanAdd:     result.CanAdd,
	}, nil
}

func (c *ControllerV1) ConnectorCreateFile(ctx context.Context, req *v1.ConnectorCreateFileReq) (res *v1.ConnectorCreateFileRes, err error) {
	acct, err := account.FromCtx(ctx)
	if err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "ConnectorCreateFile request received - Name: %s, Files: %d", req.Name, len(req.Files))

	// 上传内容先落到临时目录，网关按本地路径转发到 Onyx 文件库
	tempDir := filepath.Join(os.TempDir(), "cleardocs-upload-"+uuid.NewString())
	if err = gfile.Mkdir(tempDir); err != nil {
		return nil, errors.Wrap(errors.ErrConnectorCreateError, err, "failed to create temp upload dir")
	}
	defer func() {
		if removeErr := gfile.Remove(tempDir); removeErr != nil {
			g.Log().Warningf(ctx, "failed to clean temp upload dir %s: %v", tempDir, removeErr)
		}
	}()

	filePaths := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		if file == nil {
			continue
		}
		savedName, saveErr := file.Save(tempDir)
		if saveErr != nil {
			return nil, errors.Wrap(errors.ErrConnectorCreateError, saveErr, "failed to save uploaded file")
		}
		filePaths = append(filePaths, filepath.Join(tempDir, savedName))
	}

	created, err := service.Connector().CreateFileConnector(ctx, acct, req.Name, filePaths)
	if err != nil {
		return nil, err
	}
	return &v1.ConnectorCreateFileRes{ID: created.ID, Name: created.Name, Source: created.Source}, nil
}

func (c *ControllerV1) ConnectorCreateURL(ctx context.Context, req *v1.ConnectorCreateURLReq) (res *v1.ConnectorCreateURLRes, err error) {
	acct, err := account.FromCtx(ctx)
	if err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "ConnectorCreateURL request received - Name: %s, URL: %s", req.Name, req.URL)

	created, err := service.Connector().CreateURLConnector(ctx, acct, req.Name, req.URL)
	if err != nil {
		return nil, err
	}
	return &v1.ConnectorCreateURLRes{ID: created.ID, Name: created.Name, Source: created.Source}, nil
}

func (c *ControllerV1) ConnectorUpdate(ctx context.Context, req *v1.ConnectorUpdateReq) (res *v1.ConnectorUpdateRes, err error) {
	acct, err := account.FromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if err = service.Connector().UpdateStatus(ctx, acct, req.ID, req.Status); err != nil {
		return nil, err
	}
	return &v1.ConnectorUpdateRes{}, nil
}

func (c *ControllerV1) ConnectorDelete(ctx context.Context, req *v1.ConnectorDeleteReq) (res *v1.ConnectorDeleteRes, err error) {
	acct, err := account.FromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if err = service.Connector().Delete(ctx, acct, req.ID); err != nil {
		return nil, err
	}
	return &v1.ConnectorDeleteRes{}, nil
}
