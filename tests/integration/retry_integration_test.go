package integration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/hantverk-dashboard/apiclient"
	"github.com/kendall-kelly/hantverk-dashboard/draft"
	"github.com/kendall-kelly/hantverk-dashboard/middleware"
	"github.com/kendall-kelly/hantverk-dashboard/services"
	"github.com/kendall-kelly/hantverk-dashboard/submission"
	"github.com/kendall-kelly/hantverk-dashboard/tests/testutil"
)

// A client that times out while the backend is still saving must not create the order twice
// when the user saves the kept draft again.
func TestRetryAfterTimeoutCreatesOneOrder(t *testing.T) {
	testutil.UseTestEnvironment(t)
	gin.SetMode(gin.TestMode)

	var committed atomic.Int32
	router := gin.New()
	router.POST("/orders", middleware.Idempotency(services.NewMemoryStore(), time.Hour, nil, nil), func(c *gin.Context) {
		committed.Add(1)
		time.Sleep(300 * time.Millisecond)
		c.JSON(http.StatusCreated, gin.H{"id": "order-1", "total": 200})
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client := apiclient.New(server.URL, apiclient.WithTimeout(50*time.Millisecond))
	coordinator := submission.NewCoordinator(client, nil, nil)
	d := draft.New().
		SetCustomer("c1").
		UpdateLineItem(0, draft.FieldMaterial, "m1").
		UpdateLineItem(0, draft.FieldQuantity, "2")

	outcome, err := coordinator.Submit(context.Background(), d)
	var subErr *submission.Error
	require.True(t, errors.As(err, &subErr), "the first attempt times out")
	require.Equal(t, d, outcome.Draft)

	var created submission.Outcome
	require.Eventually(t, func() bool {
		created, err = coordinator.Submit(context.Background(), outcome.Draft)
		return err == nil
	}, 5*time.Second, 100*time.Millisecond)

	assert.Equal(t, "order-1", created.OrderID)
	assert.Equal(t, draft.New(), created.Draft)
	assert.EqualValues(t, 1, committed.Load(), "the retry was answered from the first order")
}
