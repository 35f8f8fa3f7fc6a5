package service

import (
	"fmt"
	"testing"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/pkg/database"
	"maang_tracker_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

type testEnv struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Users    *repository.UserRepository
	Topics   *repository.TopicRepository
	Problems *repository.ProblemRepository
	Events   *repository.EventRepository
	Mastery  *repository.MasteryRepository
	Tasks    *repository.DailyTaskRepository

	Taxonomy   *TaxonomyService
	Classifier *ClassifierService
	Verifier   *VerifierService
	Masteries  *MasteryService
	Weakness   *WeaknessService
	Roadmap    *RoadmapService
	DailyTasks *DailyTaskService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Learning.ApplyDefaults()
	return cfg
}

// newTestEnv opens an isolated in-memory database seeded with the default
// taxonomy and problem bank, and wires the learning services against it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		DB:       db,
		Cfg:      testConfig(),
		Users:    repository.NewUserRepository(db),
		Topics:   repository.NewTopicRepository(db),
		Problems: repository.NewProblemRepository(db),
		Events:   repository.NewEventRepository(db),
		Mastery:  repository.NewMasteryRepository(db),
		Tasks:    repository.NewDailyTaskRepository(db),
	}

	env.Taxonomy, err = NewTaxonomyService(env.Topics)
	require.NoError(t, err)

	env.Classifier = NewClassifierService(env.Taxonomy)
	env.Verifier = NewVerifierService(env.Cfg)
	locks := NewUserLockRegistry()
	env.Masteries = NewMasteryService(
		env.Events, env.Mastery, env.Problems,
		env.Taxonomy, env.Verifier, locks, nil, nil, env.Cfg,
	)
	env.Weakness = NewWeaknessService(env.Mastery, env.Taxonomy, nil)
	env.Roadmap = NewRoadmapService(env.Mastery, env.Taxonomy, nil, env.Cfg)
	env.DailyTasks = NewDailyTaskService(
		env.Tasks, env.Problems, env.Mastery, env.Users,
		env.Weakness, env.Verifier, nil, env.Cfg,
	)
	return env
}
