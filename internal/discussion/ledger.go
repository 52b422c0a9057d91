package discussion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/discuss/backend/internal/models"
)

// Direction of a vote. None only appears in results, never in a stored row.
type Direction int

const (
	Down Direction = -1
	None Direction = 0
	Up   Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "none"
}

// ParseDirection accepts "up", "down", "1" and "-1".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "1", "+1":
		return Up, nil
	case "down", "-1":
		return Down, nil
	}
	return None, fmt.Errorf("%w: unknown vote direction %q", ErrValidation, s)
}

// Target identifies the post or comment a vote applies to.
type Target struct {
	Kind string
	ID   int
}

func PostTarget(id int) Target    { return Target{Kind: models.TargetPost, ID: id} }
func CommentTarget(id int) Target { return Target{Kind: models.TargetComment, ID: id} }

func (t Target) table() (string, error) {
	switch t.Kind {
	case models.TargetPost:
		return "posts", nil
	case models.TargetComment:
		return "comments", nil
	}
	return "", fmt.Errorf("%w: unknown target kind %q", ErrValidation, t.Kind)
}

func (t Target) missing() error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, t.Kind, t.ID)
}

type Tally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

type CastResult struct {
	Tally
	MyVote Direction `json:"my_vote"`
}

// ViewGate decides whether a user may see a team's content.
type ViewGate interface {
	CheckViewPermission(ctx context.Context, userID, teamID int) error
}

// maxCastAttempts bounds reruns of a vote transaction that lost a race.
const maxCastAttempts = 3

// Ledger records votes and keeps the denormalized counters on posts and
// comments equal to the number of vote rows in each direction.
type Ledger struct {
	db   *gorm.DB
	gate ViewGate
	log  *slog.Logger
}

func NewLedger(db *gorm.DB, gate ViewGate, log *slog.Logger) *Ledger {
	return &Ledger{db: db, gate: gate, log: log}
}

// targetRow is the slice of a post or comment the ledger needs.
type targetRow struct {
	ID       int
	AuthorID int
	TeamID   int
	PostID   int
}

// loadTarget reads the target and the team it belongs to. With lock set the
// target row stays locked until tx ends.
func loadTarget(tx *gorm.DB, t Target, lock bool) (targetRow, error) {
	table, err := t.table()
	if err != nil {
		return targetRow{}, err
	}

	var row targetRow
	q := tx.Table(table).Where("id = ?", t.ID)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if t.Kind == models.TargetPost {
		q = q.Select("id", "author_id", "team_id")
	} else {
		q = q.Select("id", "author_id", "post_id")
	}
	if err := q.Take(&row).Error; err != nil {
		return targetRow{}, notFound(err, t.missing())
	}

	if t.Kind == models.TargetComment && !lock {
		if err := tx.Table("posts").Select("team_id").Where("id = ?", row.PostID).Scan(&row.TeamID).Error; err != nil {
			return targetRow{}, err
		}
	}
	return row, nil
}

// Cast applies one vote action by voter on target.
//
// No existing vote inserts one; the same direction again removes it; the
// opposite direction flips it. Counter changes are relative deltas applied in
// the same transaction as the vote row change, under a row lock on the target.
func (l *Ledger) Cast(ctx context.Context, voter int, target Target, dir Direction) (CastResult, error) {
	if dir != Up && dir != Down {
		return CastResult{}, fmt.Errorf("%w: vote direction must be up or down", ErrValidation)
	}

	var (
		result CastResult
		err    error
	)
	for attempt := 1; attempt <= maxCastAttempts; attempt++ {
		result, err = l.cast(ctx, voter, target, dir)
		if err == nil || !retryable(err) {
			break
		}
		l.log.Warn("vote transaction lost a race, retrying",
			"voter", voter, "target", target.Kind, "target_id", target.ID, "attempt", attempt, "error", err)
	}
	if err != nil {
		return CastResult{}, err
	}

	l.log.Debug("vote cast",
		"voter", voter, "target", target.Kind, "target_id", target.ID,
		"my_vote", result.MyVote.String(), "upvotes", result.Upvotes, "downvotes", result.Downvotes)
	return result, nil
}

func (l *Ledger) cast(ctx context.Context, voter int, target Target, dir Direction) (CastResult, error) {
	// Authorship and team never change, so they are checked before the
	// transaction and the row lock is held only for the mutation.
	row, err := loadTarget(l.db.WithContext(ctx), target, false)
	if err != nil {
		return CastResult{}, err
	}
	if row.AuthorID == voter {
		return CastResult{}, fmt.Errorf("%w: cannot vote on your own %s", ErrPermission, target.Kind)
	}
	if l.gate != nil {
		if err := l.gate.CheckViewPermission(ctx, voter, row.TeamID); err != nil {
			return CastResult{}, err
		}
	}

	var result CastResult
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadTarget(tx, target, true); err != nil {
			return err
		}

		var existing models.Vote
		err := tx.Where("voter_id = ? AND target_type = ? AND target_id = ?", voter, target.Kind, target.ID).
			Take(&existing).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var delta [2]int // up, down
		bump := func(d Direction, by int) {
			if d == Up {
				delta[0] += by
			} else {
				delta[1] += by
			}
		}

		switch {
		case !found:
			vote := models.Vote{VoterID: voter, TargetType: target.Kind, TargetID: target.ID, Direction: int(dir)}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			bump(dir, 1)
			result.MyVote = dir
		case Direction(existing.Direction) == dir:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			bump(dir, -1)
			result.MyVote = None
		default:
			if err := tx.Model(&existing).Update("direction", int(dir)).Error; err != nil {
				return err
			}
			bump(Direction(existing.Direction), -1)
			bump(dir, 1)
			result.MyVote = dir
		}

		table, _ := target.table()
		err = tx.Table(table).Where("id = ?", target.ID).UpdateColumns(map[string]any{
			"upvotes":   gorm.Expr("upvotes + ?", delta[0]),
			"downvotes": gorm.Expr("downvotes + ?", delta[1]),
		}).Error
		if err != nil {
			return err
		}

		return tx.Table(table).Select("upvotes", "downvotes").Where("id = ?", target.ID).Take(&result.Tally).Error
	})
	if err != nil {
		return CastResult{}, err
	}
	return result, nil
}

// Tally returns the stored counters for target.
func (l *Ledger) Tally(ctx context.Context, target Target) (Tally, error) {
	table, err := target.table()
	if err != nil {
		return Tally{}, err
	}

	var t Tally
	err = l.db.WithContext(ctx).Table(table).Select("upvotes", "downvotes").Where("id = ?", target.ID).Take(&t).Error
	if err != nil {
		return Tally{}, notFound(err, target.missing())
	}
	return t, nil
}

// TallyFor is Tally for a viewer, who must be able to see the target's team.
func (l *Ledger) TallyFor(ctx context.Context, viewer int, target Target) (Tally, error) {
	row, err := loadTarget(l.db.WithContext(ctx), target, false)
	if err != nil {
		return Tally{}, err
	}
	if l.gate != nil {
		if err := l.gate.CheckViewPermission(ctx, viewer, row.TeamID); err != nil {
			return Tally{}, err
		}
	}
	return l.Tally(ctx, target)
}

// MyVotes returns voter's direction for each of the given targets of one kind.
// Targets without a vote are absent from the map.
func (l *Ledger) MyVotes(ctx context.Context, voter int, kind string, ids []int) (map[int]Direction, error) {
	out := make(map[int]Direction, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var votes []models.Vote
	err := l.db.WithContext(ctx).
		Where("voter_id = ? AND target_type = ? AND target_id IN ?", voter, kind, ids).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.TargetID] = Direction(v.Direction)
	}
	return out, nil
}

// Reconcile recomputes target's counters from its vote rows.
func (l *Ledger) Reconcile(ctx context.Context, target Target) (Tally, error) {
	var t Tally
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadTarget(tx, target, true); err != nil {
			return err
		}

		err := tx.Model(&models.Vote{}).
			Select("COALESCE(SUM(CASE WHEN direction = 1 THEN 1 ELSE 0 END), 0) AS upvotes, "+
				"COALESCE(SUM(CASE WHEN direction = -1 THEN 1 ELSE 0 END), 0) AS downvotes").
			Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
			Scan(&t).Error
		if err != nil {
			return err
		}

		table, _ := target.table()
		return tx.Table(table).Where("id = ?", target.ID).UpdateColumns(map[string]any{
			"upvotes":   t.Upvotes,
			"downvotes": t.Downvotes,
		}).Error
	})
	if err != nil {
		return Tally{}, err
	}
	return t, nil
}

// ReconcileAll runs Reconcile over every post and comment and returns how
// many counters were out of step.
func (l *Ledger) ReconcileAll(ctx context.Context) (int, error) {
	drifted := 0
	for _, kind := range []string{models.TargetPost, models.TargetComment} {
		table, _ := Target{Kind: kind}.table()

		var rows []struct {
			ID        int
			Upvotes   int
			Downvotes int
		}
		if err := l.db.WithContext(ctx).Table(table).Select("id", "upvotes", "downvotes").Order("id").Scan(&rows).Error; err != nil {
			return drifted, err
		}

		for _, r := range rows {
			t, err := l.Reconcile(ctx, Target{Kind: kind, ID: r.ID})
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return drifted, err
			}
			if t.Upvotes != r.Upvotes || t.Downvotes != r.Downvotes {
				drifted++
				l.log.Info("reconciled vote counters",
					"target", kind, "target_id", r.ID,
					"upvotes", t.Upvotes, "downvotes", t.Downvotes,
					"was_upvotes", r.Upvotes, "was_downvotes", r.Downvotes)
			}
		}
	}
	return drifted, nil
}
