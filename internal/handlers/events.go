package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sentineldispatch/dispatch-ingest/internal/ingest"
	"github.com/sentineldispatch/dispatch-ingest/internal/models"
	"github.com/sentineldispatch/dispatch-ingest/internal/store"
)

// PostDispatchEvent handles POST /v1/dispatch/events: the webhook ingestion
// endpoint. Acknowledges only after the event is stored; geocoding outcomes
// never affect the response.
func PostDispatchEvent(pipe *ingest.Pipeline, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ct := c.ContentType(); !strings.Contains(ct, "application/json") {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				OK:    false,
				Error: "Content-Type must be application/json",
			})
			return
		}

		var req models.DispatchEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				OK:    false,
				Error: "Invalid JSON",
			})
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))

		res, err := pipe.Ingest(c.Request.Context(), &req, idemKey)
		if err != nil {
			var verr *ingest.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
					OK:            false,
					Error:         verr.Reason,
					MissingFields: verr.MissingFields,
				})
				return
			}
			var decodeErr *ingest.LocationDecodeError
			if errors.As(err, &decodeErr) {
				c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
					OK:    false,
					Error: decodeErr.Error(),
				})
				return
			}

			log.Error().Err(err).Msg("event ingestion failed")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				OK:    false,
				Error: "Server error",
			})
			return
		}

		if res.Duplicate {
			c.JSON(http.StatusOK, models.Ack{OK: true, Duplicate: true})
			return
		}

		c.JSON(http.StatusOK, models.Ack{
			OK:            true,
			EventReceived: true,
			MissingFields: res.MissingFields,
		})
	}
}

// ListDispatchEvents handles GET /v1/dispatch/events: a full in-memory dump
// for the dashboard, newest first, no pagination.
func ListDispatchEvents(st store.EventStore, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := st.List(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("event listing failed")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				OK:    false,
				Error: "Server error",
			})
			return
		}

		c.JSON(http.StatusOK, models.EventList{
			OK:    true,
			Count: len(events),
			Data:  events,
		})
	}
}
