package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/board"
	"github.com/EvgeniyGal/hr-agency/internal/database"
)

// Board types the API exposes. Each maps a status enum onto kanban
// columns.
const (
	BoardTypeJobs         = "jobs"
	BoardTypeCandidates   = "candidates"
	BoardTypeApplications = "applications"
)

// BoardEventChannel is the redis pub/sub channel carrying board change
// events to websocket subscribers.
const BoardEventChannel = "board:events"

// BoardHandler serves board snapshots and drives optimistic moves
// against the database.
type BoardHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	activity    *ActivityRecorder
}

// NewBoardHandler builds the handler. redisClient may be nil, which
// disables event publishing (tests).
func NewBoardHandler(db *gorm.DB, redisClient *redis.Client, activity *ActivityRecorder) *BoardHandler {
	return &BoardHandler{db: db, redisClient: redisClient, activity: activity}
}

// boardEvent is the payload published on BoardEventChannel after a
// confirmed move.
type boardEvent struct {
	Board  string `json:"board"`
	ItemID string `json:"item_id"`
	From   string `json:"from"`
	To     string `json:"to"`
	UserID uint   `json:"user_id"`
}

// GetBoard returns the full snapshot for one board type: every column in
// order with its cards.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	boardType := c.Param("type")
	b, err := h.loadBoard(c.Request.Context(), boardType)
	if err != nil {
		if errors.Is(err, errUnknownBoardType) {
			BadRequest(c, "unknown board type")
			return
		}
		Internal(c, "failed to load board")
		return
	}

	columns := make([]gin.H, 0, len(b.Columns()))
	for _, col := range b.Columns() {
		items := b.Items(col)
		cards := make([]any, 0, len(items))
		for _, it := range items {
			cards = append(cards, it.Payload)
		}
		columns = append(columns, gin.H{
			"id":    col,
			"cards": cards,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"board":   boardType,
		"columns": columns,
	})
}

type moveRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// MoveCard applies one optimistic move. The card is placed in the
// destination column immediately; the database write confirms it, and a
// failed write puts the card back where it was and surfaces the error.
// A drop on the card's own column or outside the board changes nothing.
func (h *BoardHandler) MoveCard(c *gin.Context) {
	boardType := c.Param("type")
	var req moveRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	b, err := h.loadBoard(ctx, boardType)
	if err != nil {
		if errors.Is(err, errUnknownBoardType) {
			BadRequest(c, "unknown board type")
			return
		}
		Internal(c, "failed to load board")
		return
	}

	syncer := &board.Syncer{
		Board:  b,
		Commit: h.commitFunc(boardType),
	}

	move, err := syncer.Move(ctx, req.ItemID, req.Destination)
	if err != nil {
		if errors.Is(err, board.ErrUnknownItem) || errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "item not found on board")
			return
		}
		loggerFromContext(c).Error("board move", slog.String("board", boardType), slog.String("error", err.Error()))
		Internal(c, "failed to move card")
		return
	}
	if move == nil {
		c.JSON(http.StatusOK, gin.H{"moved": false})
		return
	}

	userID, _ := userIDFromContext(c)
	h.publishEvent(ctx, c, boardEvent{
		Board:  boardType,
		ItemID: move.ItemID,
		From:   string(move.From),
		To:     string(move.To),
		UserID: userID,
	})
	h.activity.Record(c, boardType+".board_moved", boardEntityType(boardType), parseItemID(move.ItemID), map[string]any{
		"from": move.From,
		"to":   move.To,
	})

	c.JSON(http.StatusOK, gin.H{
		"moved":   true,
		"item_id": move.ItemID,
		"from":    move.From,
		"to":      move.To,
	})
}

var errUnknownBoardType = errors.New("unknown board type")

// loadBoard snapshots one board type from the database. Cards are
// ordered by creation time within their columns.
func (h *BoardHandler) loadBoard(ctx context.Context, boardType string) (*board.Board, error) {
	switch boardType {
	case BoardTypeJobs:
		var jobs []database.Job
		err := h.db.WithContext(ctx).Preload("Client").Order("created_at ASC").Find(&jobs).Error
		if err != nil {
			return nil, err
		}
		items := make([]board.Item, 0, len(jobs))
		for _, job := range jobs {
			items = append(items, board.Item{
				ID:     strconv.FormatUint(uint64(job.ID), 10),
				Column: board.Column(job.Status),
				Payload: gin.H{
					"id":          job.ID,
					"title":       job.Title,
					"client_name": job.Client.Name,
				},
			})
		}
		return board.New(jobColumns(), items), nil

	case BoardTypeCandidates:
		var candidates []database.Candidate
		err := h.db.WithContext(ctx).Order("created_at ASC").Find(&candidates).Error
		if err != nil {
			return nil, err
		}
		items := make([]board.Item, 0, len(candidates))
		for _, candidate := range candidates {
			items = append(items, board.Item{
				ID:     strconv.FormatUint(uint64(candidate.ID), 10),
				Column: board.Column(candidate.Status),
				Payload: gin.H{
					"id":   candidate.ID,
					"name": candidate.FirstName + " " + candidate.LastName,
				},
			})
		}
		return board.New(candidateColumns(), items), nil

	case BoardTypeApplications:
		var apps []database.Application
		err := h.db.WithContext(ctx).Preload("Job").Preload("Candidate").Order("applied_at ASC").Find(&apps).Error
		if err != nil {
			return nil, err
		}
		items := make([]board.Item, 0, len(apps))
		for _, app := range apps {
			items = append(items, board.Item{
				ID:     strconv.FormatUint(uint64(app.ID), 10),
				Column: board.Column(app.Status),
				Payload: gin.H{
					"id":             app.ID,
					"job_title":      app.Job.Title,
					"candidate_name": app.Candidate.FirstName + " " + app.Candidate.LastName,
				},
			})
		}
		return board.New(applicationColumns(), items), nil

	default:
		return nil, errUnknownBoardType
	}
}

// commitFunc writes the authoritative status for one card. Zero rows
// updated means the row vanished between snapshot and write.
func (h *BoardHandler) commitFunc(boardType string) board.CommitFunc {
	return func(ctx context.Context, itemID string, status board.Column) error {
		var model any
		switch boardType {
		case BoardTypeJobs:
			model = &database.Job{}
		case BoardTypeCandidates:
			model = &database.Candidate{}
		case BoardTypeApplications:
			model = &database.Application{}
		default:
			return errUnknownBoardType
		}

		result := h.db.WithContext(ctx).Model(model).
			Where("id = ?", itemID).
			Update("status", string(status))
		if result.Error != nil {
			return fmt.Errorf("update %s %s: %w", boardType, itemID, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}
}

func (h *BoardHandler) publishEvent(ctx context.Context, c *gin.Context, event boardEvent) {
	if h.redisClient == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.redisClient.Publish(pubCtx, BoardEventChannel, payload).Err(); err != nil {
		loggerFromContext(c).Warn("publish board event", slog.String("error", err.Error()))
	}
}

func jobColumns() []board.Column {
	statuses := database.JobStatuses()
	cols := make([]board.Column, 0, len(statuses))
	for _, s := range statuses {
		cols = append(cols, board.Column(s))
	}
	return cols
}

func candidateColumns() []board.Column {
	statuses := database.CandidateStatuses()
	cols := make([]board.Column, 0, len(statuses))
	for _, s := range statuses {
		cols = append(cols, board.Column(s))
	}
	return cols
}

func applicationColumns() []board.Column {
	statuses := database.ApplicationStatuses()
	cols := make([]board.Column, 0, len(statuses))
	for _, s := range statuses {
		cols = append(cols, board.Column(s))
	}
	return cols
}

func boardEntityType(boardType string) string {
	switch boardType {
	case BoardTypeJobs:
		return "job"
	case BoardTypeCandidates:
		return "candidate"
	case BoardTypeApplications:
		return "application"
	default:
		return boardType
	}
}

func parseItemID(itemID string) uint {
	id, err := strconv.ParseUint(itemID, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
