package sim

// Aging bounds starvation: every tick a process spends in the ready queue counts
// toward its AgeCounter, and each time the counter reaches the threshold the
// process's priority value is lowered by one (never below 0) and the counter
// resets. The running process and the job pool are never aged.
//
// Aging applies under every policy. Only Priority and PriorityNP read the
// priority for ordering, so under other policies the boost is silent.

// applyAging ages every ready process and returns those whose priority improved.
func applyAging(ready []*Process, threshold int) []*Process {
	var boosted []*Process
	for _, p := range ready {
		p.AgeCounter++
		if p.AgeCounter < threshold {
			continue
		}
		if p.Priority > 0 {
			p.Priority--
			boosted = append(boosted, p)
		}
		p.AgeCounter = 0
	}
	return boosted
}

// StarvationBound returns the worst-case number of ready ticks before a process
// of the given priority is boosted to the best priority value (0).
func StarvationBound(priority, threshold int) int64 {
	if priority <= 0 {
		return 0
	}
	return int64(priority) * int64(threshold)
}
