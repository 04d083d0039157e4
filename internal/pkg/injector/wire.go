//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	authservice "github.com/lk2023060901/drive-backend/internal/auth/service"
	"github.com/lk2023060901/drive-backend/internal/conf"
	drivebiz "github.com/lk2023060901/drive-backend/internal/drive/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/server"
	userbiz "github.com/lk2023060901/drive-backend/internal/user/biz"
	userservice "github.com/lk2023060901/drive-backend/internal/user/service"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	dataProviderSet,
	repositoryProviderSet,
	useCaseProviderSet,
	httpServiceProviderSet,
	server.NewHTTPServer,
)

var dataProviderSet = wire.NewSet(
	provideData,
	provideJWTManager,
)

var repositoryProviderSet = wire.NewSet(
	provideUserRepo,
	provideAuthUserRepo,
	provideFileRepo,
	provideFolderRepo,
	provideShareRepo,
	provideLinkRepo,
)

var useCaseProviderSet = wire.NewSet(
	userbiz.NewUserUseCase,
	provideAuthUseCase,
	drivebiz.NewAccessResolver,
	providePersistenceGateway,
	provideFileUseCase,
	drivebiz.NewFolderUseCase,
	provideShareNotifier,
	provideShareUseCase,
	provideLinkResolver,
	drivebiz.NewLinkUseCase,
	provideTrashUseCase,
	drivebiz.NewSearchUseCase,
)

var httpServiceProviderSet = wire.NewSet(
	authservice.NewAuthService,
	userservice.NewUserService,
	provideDriveService,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
