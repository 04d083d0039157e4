package injector

import (
	"github.com/lk2023060901/drive-backend/internal/auth"
	authbiz "github.com/lk2023060901/drive-backend/internal/auth/biz"
	authdata "github.com/lk2023060901/drive-backend/internal/auth/data"
	"github.com/lk2023060901/drive-backend/internal/conf"
	"github.com/lk2023060901/drive-backend/internal/data"
	drivebiz "github.com/lk2023060901/drive-backend/internal/drive/biz"
	drivedata "github.com/lk2023060901/drive-backend/internal/drive/data"
	driveservice "github.com/lk2023060901/drive-backend/internal/drive/service"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	userbiz "github.com/lk2023060901/drive-backend/internal/user/biz"
	userdata "github.com/lk2023060901/drive-backend/internal/user/data"
)

// Data layer

func provideData(config *conf.Config, log *logger.Logger) (*data.Data, func(), error) {
	return data.NewData(config, log)
}

func provideJWTManager(config *conf.Config) *auth.JWTManager {
	return auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.TokenTTL)
}

// Repositories

func provideUserRepo(d *data.Data) userbiz.UserRepo {
	return userdata.NewUserRepo(d.DB)
}

func provideAuthUserRepo(d *data.Data) authbiz.UserRepo {
	return authdata.NewAuthUserRepo(d.DB)
}

func provideFileRepo(d *data.Data) drivebiz.FileRepo {
	return drivedata.NewFileRepo(d.DB)
}

func provideFolderRepo(d *data.Data) drivebiz.FolderRepo {
	return drivedata.NewFolderRepo(d.DB)
}

func provideShareRepo(d *data.Data) drivebiz.ShareRepo {
	return drivedata.NewShareRepo(d.DB)
}

func provideLinkRepo(d *data.Data) drivebiz.LinkRepo {
	return drivedata.NewLinkRepo(d.DB)
}

// Use cases

func provideAuthUseCase(repo authbiz.UserRepo, jm *auth.JWTManager, config *conf.Config) *authbiz.AuthUseCase {
	return authbiz.NewAuthUseCase(repo, jm, config.Auth.BcryptCost)
}

func providePersistenceGateway(files drivebiz.FileRepo, d *data.Data, log *logger.Logger) *drivebiz.PersistenceGateway {
	return drivebiz.NewPersistenceGateway(files, drivedata.NewObjectStore(d.MinIO), d.Local, d.Signer, log)
}

func provideFileUseCase(
	files drivebiz.FileRepo,
	folders drivebiz.FolderRepo,
	access *drivebiz.AccessResolver,
	gateway *drivebiz.PersistenceGateway,
	config *conf.Config,
) *drivebiz.FileUseCase {
	return drivebiz.NewFileUseCase(files, folders, access, gateway, config.Storage.DownloadURLTTL)
}

func provideShareNotifier(d *data.Data, config *conf.Config, log *logger.Logger) drivebiz.ShareNotifier {
	if d.Mailer == nil {
		return nil
	}
	return drivedata.NewMailNotifier(d.Mailer, d.Pool, config.Server.PublicBaseURL, log)
}

func provideShareUseCase(
	shares drivebiz.ShareRepo,
	files drivebiz.FileRepo,
	folders drivebiz.FolderRepo,
	access *drivebiz.AccessResolver,
	users *userbiz.UserUseCase,
	notifier drivebiz.ShareNotifier,
) *drivebiz.ShareUseCase {
	uc := drivebiz.NewShareUseCase(shares, files, folders, access, users)
	uc.SetNotifier(notifier)
	return uc
}

func provideLinkResolver(
	links drivebiz.LinkRepo,
	files drivebiz.FileRepo,
	folders drivebiz.FolderRepo,
	gateway *drivebiz.PersistenceGateway,
	config *conf.Config,
) *drivebiz.LinkResolver {
	return drivebiz.NewLinkResolver(links, files, folders, gateway, config.Storage.LinkURLTTL)
}

func provideTrashUseCase(
	files drivebiz.FileRepo,
	folders drivebiz.FolderRepo,
	shares drivebiz.ShareRepo,
	links drivebiz.LinkRepo,
	access *drivebiz.AccessResolver,
	gateway *drivebiz.PersistenceGateway,
	d *data.Data,
	log *logger.Logger,
) *drivebiz.TrashUseCase {
	return drivebiz.NewTrashUseCase(files, folders, shares, links, access, gateway, drivedata.NewTransactor(d.DB), d.Pool, log)
}

// Services

func provideDriveService(
	files *drivebiz.FileUseCase,
	folders *drivebiz.FolderUseCase,
	shares *drivebiz.ShareUseCase,
	links *drivebiz.LinkUseCase,
	trash *drivebiz.TrashUseCase,
	search *drivebiz.SearchUseCase,
	d *data.Data,
	config *conf.Config,
	log *logger.Logger,
) *driveservice.DriveService {
	return driveservice.NewDriveService(files, folders, shares, links, trash, search, d.Local, driveservice.Options{
		MaxUploadBytes: config.Server.MaxUploadBytes,
		PublicBaseURL:  config.Server.PublicBaseURL,
	}, log)
}
