package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/activity/repository"
)

type staticWindows struct{ window model.Window }

func (s staticWindows) DefaultWindow(context.Context, model.Kind) (model.Window, error) {
	return s.window, nil
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Issue{}, &model.PullRequest{}))
	return db
}

func setupRouter(db *gorm.DB, window model.Window) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/reporting"), db, staticWindows{window: window}, zap.NewNop().Sugar())
	return r
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIntegration_PullRequestData(t *testing.T) {
	ctx := context.Background()
	db := setupIntegrationDB(t)
	prs := repository.NewPullRequests(db, zap.NewNop().Sugar())

	closedAt := date(2024, 3, 2)
	require.NoError(t, prs.UpsertBatch(ctx, []model.PullRequest{
		{Record: model.Record{
			URL: "https://github.com/acme/widgets/pull/1", Repository: "acme/widgets", Number: 1,
			Title: "old but open", Creator: "alice", Open: true,
			CreatedAt: date(2024, 1, 1), UpdatedAt: date(2024, 1, 1),
		}},
		{Record: model.Record{
			URL: "https://github.com/acme/widgets/pull/2", Repository: "acme/widgets", Number: 2,
			Title: "closed long ago", Creator: "alice",
			CreatedAt: date(2024, 3, 1), UpdatedAt: closedAt, ClosedAt: &closedAt,
		}},
	}))

	r := setupRouter(db, model.Window{Start: date(2024, 1, 1), End: date(2024, 12, 31)})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reporting/data/pr?startTime=01/05/2024&endTime=31/05/2024", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.DataResponse[model.PullRequest]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.Data[0].Number)
}

func TestIntegration_UserIssues(t *testing.T) {
	ctx := context.Background()
	db := setupIntegrationDB(t)
	issues := repository.NewIssues(db, zap.NewNop().Sugar())

	bob := "bob"
	require.NoError(t, issues.UpsertBatch(ctx, []model.Issue{
		{Record: model.Record{
			URL: "https://github.com/acme/widgets/issues/1", Repository: "acme/widgets", Number: 1,
			Title: "upstream", Creator: "alice", Assignee: &bob, Open: true,
			CreatedAt: date(2024, 5, 1), UpdatedAt: date(2024, 5, 1),
		}},
		{Record: model.Record{
			URL: "https://github.com/bob/widgets/issues/2", Repository: "bob/widgets", Number: 2,
			Title: "fork", Creator: "bob", Open: true,
			CreatedAt: date(2024, 5, 2), UpdatedAt: date(2024, 5, 2),
		}},
		{Record: model.Record{
			URL: "https://github.com/acme/gadgets/issues/3", Repository: "acme/gadgets", Number: 3,
			Title: "other repository", Creator: "bob", Open: true,
			CreatedAt: date(2024, 5, 3), UpdatedAt: date(2024, 5, 3),
		}},
	}))

	r := setupRouter(db, model.Window{Start: date(2024, 1, 1), End: date(2024, 12, 31)})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reporting/issues/repo/acme/widgets/user/bob", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []model.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "upstream", resp[0].Title)
	assert.Equal(t, "fork", resp[1].Title)
}
