package activityapi

import (
	"errors"

	"github.com/pscheid92/signupboard/internal/domain"
	"github.com/tidwall/gjson"
)

var errMalformedBoard = errors.New("activities payload is not a JSON object")

// decodeBoard parses the activity mapping. gjson walks object members in
// document order, which encoding/json's map decoding would lose.
func decodeBoard(body []byte) (domain.Board, error) {
	if !gjson.ValidBytes(body) {
		return domain.Board{}, errMalformedBoard
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return domain.Board{}, errMalformedBoard
	}

	board := domain.Board{Activities: []domain.Activity{}}
	root.ForEach(func(key, value gjson.Result) bool {
		board.Activities = append(board.Activities, decodeActivity(key.String(), value))
		return true
	})
	return board, nil
}

func decodeActivity(name string, v gjson.Result) domain.Activity {
	a := domain.Activity{
		Name:            name,
		Description:     v.Get("description").String(),
		Schedule:        v.Get("schedule").String(),
		MaxParticipants: int(v.Get("max_participants").Int()),
	}

	// A missing or non-array participants field renders as empty.
	if p := v.Get("participants"); p.IsArray() {
		for _, email := range p.Array() {
			a.Participants = append(a.Participants, email.String())
		}
	}
	return a
}

// parseDetail extracts a string "detail" field from an error body. Any
// other shape yields "" so callers fall back to their generic message.
func parseDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	detail := gjson.GetBytes(body, "detail")
	if detail.Type != gjson.String {
		return ""
	}
	return detail.Str
}
