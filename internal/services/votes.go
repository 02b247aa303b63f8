package services

import (
	"errors"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Vote directions as they appear on the wire.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// CastVote applies one vote transition for (userID, postID) and returns
// the post's resulting counters:
//
//	no existing vote        -> insert row, counter +1
//	same direction exists   -> toggle off: delete row, counter -1
//	opposite direction      -> flip row, old counter -1, new counter +1
//
// The row change and counter adjustments run in one transaction; the
// unique (user_id, post_id) index resolves concurrent double-submission,
// in which case the losing request retries once against the settled state.
func CastVote(userID, postID uint, direction string) (upvotes, downvotes int, err error) {
	value, err := directionValue(direction)
	if err != nil {
		return 0, 0, err
	}

	err = castVoteOnce(userID, postID, value)
	if err != nil && isUniqueViolation(err) {
		err = castVoteOnce(userID, postID, value)
	}
	if err != nil {
		return 0, 0, err
	}

	var post models.Post
	if err := db.DB.Select("upvotes", "downvotes").First(&post, postID).Error; err != nil {
		return 0, 0, err
	}
	return post.Upvotes, post.Downvotes, nil
}

func castVoteOnce(userID, postID uint, value int) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var vote models.Vote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error
		switch {
		case err == nil && vote.Value == value:
			// Toggle off.
			if err := tx.Delete(&vote).Error; err != nil {
				return err
			}
			return adjustCounter(tx, postID, value, -1)

		case err == nil:
			// Switch direction.
			if err := tx.Model(&vote).Update("value", value).Error; err != nil {
				return err
			}
			if err := adjustCounter(tx, postID, -value, -1); err != nil {
				return err
			}
			return adjustCounter(tx, postID, value, +1)

		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = models.Vote{UserID: userID, PostID: postID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			return adjustCounter(tx, postID, value, +1)

		default:
			return err
		}
	})
}

func directionValue(direction string) (int, error) {
	switch direction {
	case DirectionUp:
		return models.VoteUp, nil
	case DirectionDown:
		return models.VoteDown, nil
	default:
		return 0, Validationf("vote_type", "invalid vote direction %q", direction)
	}
}

func counterColumn(value int) string {
	if value == models.VoteUp {
		return "upvotes"
	}
	return "downvotes"
}

func adjustCounter(tx *gorm.DB, postID uint, value, delta int) error {
	col := counterColumn(value)
	return tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error
}

// RecountVotes recomputes a post's counters from the ledger. The counters
// are derived values; this is the cross-check used by tests and available
// for repair jobs.
func RecountVotes(postID uint) (upvotes, downvotes int64, err error) {
	if err = db.DB.Model(&models.Vote{}).
		Where("post_id = ? AND value = ?", postID, models.VoteUp).
		Count(&upvotes).Error; err != nil {
		return
	}
	err = db.DB.Model(&models.Vote{}).
		Where("post_id = ? AND value = ?", postID, models.VoteDown).
		Count(&downvotes).Error
	return
}
