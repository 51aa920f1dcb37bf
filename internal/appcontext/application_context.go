package appcontext

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/config"
	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/google_auth"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache"
	redis_cache "github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache/redis"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/authkeeper/internal/service"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type ApplicationContext struct {
	DbConn             *pgxpool.Pool
	DbDao              db.IStore
	RedisClient        *redis.Client
	Cache              cache.Cache
	Publisher          eventbus.IPublisher
	Cf                 *config.Config
	TokenMaker         token.Maker
	GoogleAuthVerifier google_auth.IAuthVerifier
	PermissionConfig   *config.PermissionConfig
	UserService        service.IUserService
	SessionService     service.ISessionService
	TokenService       service.ITokenService
	RateLimitService   service.IRateLimitService
	AuditService       service.IAuditService
	AuthService        service.IAuthService

	sweeperStop chan struct{}
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	v := reflect.ValueOf(*cf)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fieldName := t.Field(i).Name
		fieldValue := v.Field(i).Interface()
		fmt.Printf("  \"%s\": \"%v\",\n", fieldName, fieldValue)
	}
	err := app.Init()

	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (app *ApplicationContext) Init() error {
	err := app.setUpdbConn()
	if err != nil {
		return err
	}
	err = app.setUpdbDao()
	if err != nil {
		return err
	}

	err = app.dbInit()
	if err != nil {
		return err
	}

	err = app.setUpCache()
	if err != nil {
		return err
	}

	err = app.setUpPublisher()
	if err != nil {
		return err
	}

	err = app.setTokenMaker()
	if err != nil {
		return err
	}

	err = app.setGoogleVerifier()
	if err != nil {
		return err
	}

	err = app.setUpPermissionConfig()
	if err != nil {
		return err
	}

	err = app.setUpUserService()
	if err != nil {
		return err
	}

	err = app.setUpSessionService()
	if err != nil {
		return err
	}

	err = app.setUpTokenService()
	if err != nil {
		return err
	}

	err = app.setUpRateLimitService()
	if err != nil {
		return err
	}

	err = app.setUpAuditService()
	if err != nil {
		return err
	}

	err = app.setUpAuthService()
	if err != nil {
		return err
	}

	//session資料要跨重啟保留, 重啟後refresh flow才能繼續
	//這裡只啟動定期清理, 不做任何清空
	app.startSessionSweeper()

	return nil
}

func (app *ApplicationContext) setUpdbConn() error {
	log.Printf("Start setup database connection")
	conn, err := pgxpool.New(context.Background(),
		fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", app.Cf.DbUser, app.Cf.DbPas, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbName))
	if err != nil {
		return err
	}
	app.DbConn = conn
	log.Printf("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpdbDao() error {
	log.Printf("Start setup database DAO")
	app.DbDao = db.NewStore(app.DbConn)
	log.Printf("Finish setup database DAO")
	return nil
}

func (app *ApplicationContext) setUpCache() error {
	log.Printf("Start setup redis cache")
	client, err := redis_cache.GetRedisClient(app.Cf.RedisAddr,
		redis_cache.WithPassword(app.Cf.RedisPassword),
		redis_cache.WithDB(app.Cf.RedisDb))
	if err != nil {
		return err
	}
	app.RedisClient = client
	app.Cache = redis_cache.NewRedisCache(client, app.Cf.ModulerName)
	log.Printf("Finish setup redis cache")
	return nil
}

func (app *ApplicationContext) setUpPublisher() error {
	log.Printf("Start setup event publisher")
	app.Publisher = eventbus.NewKafkaPublisher(app.Cf.KafkaBrokerList(), app.Cf.KafkaTopic)
	log.Printf("Finish setup event publisher")
	return nil
}

func (app *ApplicationContext) setTokenMaker() error {
	log.Printf("Start setup token maker")

	tokenMaker, err := token.NewJWTMaker(app.Cf.AccessTokenKey, app.Cf.RefreshTokenKey, app.Cf.TokenIssuer, app.Cf.TokenAudience)
	if err != nil {
		log.Fatalf("無法創建 token maker: %v", err)
	}

	app.TokenMaker = tokenMaker
	log.Printf("Finish setup token maker")
	return nil
}

func (app *ApplicationContext) setGoogleVerifier() error {
	log.Printf("Start setup googleVerifier")
	app.GoogleAuthVerifier = google_auth.NewGoogleAuthVerifier(app.Cf.GoogleClientID)
	log.Printf("Finish setup googleVerifier")
	return nil
}

func (app *ApplicationContext) setUpPermissionConfig() error {
	log.Printf("Start setup permission config")
	perCf, err := config.LoadPermissionConfig(fmt.Sprintf("%s/docs/permission.yaml", util.GetProjectRoot("github.com/RoyceAzure/lab/authkeeper")))
	if err != nil {
		return err
	}
	app.PermissionConfig = perCf
	log.Printf("Finish setup permission config")
	return nil
}

func (app *ApplicationContext) setUpUserService() error {
	log.Printf("Start setup user service")
	app.UserService = service.NewUserService(app.DbDao, app.Cache, app.Cf.TenantID, app.Cf.BcryptCost, app.Cf.AutoActivatePending)
	log.Printf("Finish setup user service")
	return nil
}

func (app *ApplicationContext) setUpSessionService() error {
	log.Printf("Start setup session service")
	app.SessionService = service.NewSessionService(app.DbDao)
	log.Printf("Finish setup session service")
	return nil
}

func (app *ApplicationContext) setUpTokenService() error {
	log.Printf("Start setup token service")
	app.TokenService = service.NewTokenService(app.TokenMaker, app.Cache)
	log.Printf("Finish setup token service")
	return nil
}

func (app *ApplicationContext) setUpRateLimitService() error {
	log.Printf("Start setup rate limit service")
	app.RateLimitService = service.NewRateLimitService(app.Cache)
	log.Printf("Finish setup rate limit service")
	return nil
}

func (app *ApplicationContext) setUpAuditService() error {
	log.Printf("Start setup audit service")
	app.AuditService = service.NewAuditService(app.DbDao)
	log.Printf("Finish setup audit service")
	return nil
}

func (app *ApplicationContext) setUpAuthService() error {
	log.Printf("Start setup auth service")
	app.AuthService = service.NewAuthService(
		app.UserService,
		app.SessionService,
		app.TokenService,
		app.RateLimitService,
		app.AuditService,
		app.Publisher,
		app.GoogleAuthVerifier,
		app.PermissionConfig,
		app.Cache,
		app.Cf.StrictDevicePolicy,
	)
	log.Printf("Finish setup auth service")
	return nil
}

// startSessionSweeper 定期清除過期超過保留期限的session row
func (app *ApplicationContext) startSessionSweeper() {
	log.Printf("Start setup session sweeper")
	app.sweeperStop = make(chan struct{})

	go func() {
		ticker := time.NewTicker(constants.SessionSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if n, err := app.SessionService.DeleteExpiredSessions(ctx); err != nil {
					log.Printf("session sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("session sweep removed %d rows", n)
				}
				cancel()
			case <-app.sweeperStop:
				return
			}
		}
	}()
	log.Printf("Finish setup session sweeper")
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Printf("Start application shutdown")

	done := make(chan error)
	go func() {
		defer close(done)

		//停止session清理
		if app.sweeperStop != nil {
			close(app.sweeperStop)
		}

		//session資料保留, 重啟後既有refresh token依然有效

		// 關閉 event publisher
		if app.Publisher != nil {
			log.Printf("Closing event publisher...")
			if err := app.Publisher.Close(); err != nil {
				//有錯誤不結束流程
				log.Printf("event publisher shutdown error: %v", err)
			}
		}

		// 關閉 redis
		if app.RedisClient != nil {
			log.Printf("Closing redis client...")
			if err := app.RedisClient.Close(); err != nil {
				log.Printf("redis shutdown error: %v", err)
			}
		}

		// 關閉 DB
		if app.DbConn != nil {
			log.Printf("Closing database connection...")
			app.DbConn.Close()
		}

		log.Printf("Application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}

func runDBMigration(migrationURL string, dbSource string) error {
	migrateion, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		return err
	}

	return migrateion.Up()
}

// dbInit 啟動時套用db migration
func (app *ApplicationContext) dbInit() error {
	log.Printf("Start setup db init")

	migrateUrl := fmt.Sprintf("%s/internal/infra/repository/db/migrations", util.GetProjectRoot("github.com/RoyceAzure/lab/authkeeper"))
	err := runDBMigration(
		fmt.Sprintf("file://%s", migrateUrl),
		fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", app.Cf.DbUser, app.Cf.DbPas, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbName),
	)

	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	log.Printf("Finish setup db init")
	return nil
}
