package undo

// Log is an immutable stack of actions. The zero value is an empty log and
// every Push/Pop returns a new Log sharing structure with the old one.
type Log struct {
	top  *entry
	size int
}

type entry struct {
	action Action
	next   *entry
}

// Push returns a log with a on top.
func (l Log) Push(a Action) Log {
	return Log{top: &entry{action: a, next: l.top}, size: l.size + 1}
}

// Pop returns the most recent action and the log below it.
func (l Log) Pop() (Action, Log, bool) {
	if l.top == nil {
		return Action{}, l, false
	}
	return l.top.action, Log{top: l.top.next, size: l.size - 1}, true
}

// Peek returns the most recent action without removing it.
func (l Log) Peek() (Action, bool) {
	if l.top == nil {
		return Action{}, false
	}
	return l.top.action, true
}

// Len returns the number of logged actions.
func (l Log) Len() int {
	return l.size
}

// Actions returns the logged actions oldest first.
func (l Log) Actions() []Action {
	out := make([]Action, l.size)
	i := l.size - 1
	for e := l.top; e != nil; e = e.next {
		out[i] = e.action
		i--
	}
	return out
}
