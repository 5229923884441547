package solver

import (
	"context"
	"sync"

	"github.com/paiban/paihu/pkg/assigner/capacity"
)

// rootBranch 首个患者的一个根分支
// nurseIdx 为 -1 表示跳过该患者
type rootBranch struct {
	nurseIdx int
}

// searchParallel 并行探索根分支
// 把首个患者的每个候选分支分发给工作协程，容量跟踪器按分支复制，
// 热路径上不共享可变状态；全局最优经 searchState 汇合，
// 平局由字典序裁决，因此结果与串行搜索一致
func (s *BranchBoundSolver) searchParallel(ctx context.Context, st *searchState, tracker *capacity.Tracker, current []int) {
	branches := make([]rootBranch, 0, s.matrix.NurseCount()+1)
	for _, ni := range s.candidateOrder(0, tracker) {
		branches = append(branches, rootBranch{nurseIdx: ni})
	}
	branches = append(branches, rootBranch{nurseIdx: -1})

	workers := s.cfg.Workers
	if workers > len(branches) {
		workers = len(branches)
	}

	jobChan := make(chan rootBranch, len(branches))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for branch := range jobChan {
				if st.stop.Load() {
					continue
				}
				s.exploreRootBranch(ctx, st, tracker, current, branch)
			}
		}()
	}

	for _, b := range branches {
		jobChan <- b
	}
	close(jobChan)

	wg.Wait()
}

// exploreRootBranch 在独立的容量快照上探索一个根分支
func (s *BranchBoundSolver) exploreRootBranch(ctx context.Context, st *searchState, tracker *capacity.Tracker, current []int, branch rootBranch) {
	localTracker := tracker.Clone()
	localCurrent := make([]int, len(current))
	copy(localCurrent, current)

	p := s.patients[0]
	assigned := 0

	if branch.nurseIdx >= 0 {
		if !localTracker.Assign(branch.nurseIdx, p) {
			return
		}
		localCurrent[0] = branch.nurseIdx
		assigned = 1
	}

	s.search(ctx, st, 1, localTracker, localCurrent, assigned)
}
