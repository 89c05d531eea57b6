package allocator

import "github.com/rhyrak/go-allocate/pkg/model"

// Evaluator scores students. Lower happiness means higher allocation
// priority.
type Evaluator struct {
	Rewards      []int // Rewards[rank-1]
	GroupPenalty int
	groups       []model.GroupID
}

func NewEvaluator(rewards []int, groupPenalty int, groups []model.GroupID) *Evaluator {
	return &Evaluator{Rewards: rewards, GroupPenalty: groupPenalty, groups: groups}
}

// Reward returns the happiness gained for a granted rank.
func (e *Evaluator) Reward(rank int) int {
	if rank < 1 || rank > len(e.Rewards) {
		return 0
	}
	return e.Rewards[rank-1]
}

// Evaluate recomputes and caches the student's happiness.
func (e *Evaluator) Evaluate(s *model.Student) int {
	happiness := 0
	for rank := 1; rank <= s.Ranks(); rank++ {
		if s.HasGot(rank) {
			happiness += e.Reward(rank)
		}
	}
	happiness -= e.GroupPenalty * len(s.UnmetGroups(e.groups))
	s.Happiness = happiness
	return happiness
}
