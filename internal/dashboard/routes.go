package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AminRahimi/deadman-switch/internal/store"
)

// registerRoutes sets up all dashboard routes on the gin router.
func registerRoutes(router *gin.Engine, s *store.Store) {
	router.GET("/", handleIndex(s))
	router.GET("/api/state", handleState(s))
	router.GET("/api/runs", handleRuns(s))
}

// stateView is the JSON shape of the current monitor state.
type stateView struct {
	LastCheckin *time.Time `json:"last_checkin"`
	AlertSent   bool       `json:"alert_sent"`
	NextOffset  int64      `json:"next_offset"`
}

func currentState(s *store.Store) stateView {
	state := s.LoadCheckinState()
	return stateView{
		LastCheckin: state.LastCheckin,
		AlertSent:   state.AlertSent,
		NextOffset:  s.LoadCursor(),
	}
}

func handleIndex(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		runs, err := s.RecentRuns(20)
		if err != nil {
			c.String(http.StatusInternalServerError, "query runs: %v", err)
			return
		}
		state := currentState(s)

		age := ""
		if state.LastCheckin != nil {
			age = time.Since(*state.LastCheckin).Round(time.Minute).String()
		}
		c.HTML(http.StatusOK, "status.html", gin.H{
			"state": state,
			"age":   age,
			"runs":  runs,
		})
	}
}

func handleState(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, currentState(s))
	}
}

func handleRuns(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		runs, err := s.RecentRuns(50)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, runs)
	}
}
