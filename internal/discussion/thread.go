package discussion

import (
	"sort"

	"github.com/emilythestrangee/discuss/backend/internal/models"
)

// Thread is a comment with its replies nested beneath it.
type Thread struct {
	models.Comment
	MyVote  Direction `json:"my_vote"`
	Replies []*Thread `json:"replies"`
}

// BuildThreads arranges a post's comments into trees. Siblings keep insertion
// order (ascending id). A comment whose parent is not in the slice is treated
// as top-level so nothing is dropped.
func BuildThreads(comments []models.Comment, myVotes map[int]Direction) []*Thread {
	sorted := make([]models.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	nodes := make(map[int]*Thread, len(sorted))
	for _, c := range sorted {
		nodes[c.ID] = &Thread{Comment: c, MyVote: myVotes[c.ID], Replies: []*Thread{}}
	}

	roots := []*Thread{}
	for _, c := range sorted {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
