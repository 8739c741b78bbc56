package router

// Future is a one-shot asynchronous construction step. It is called once
// and yields exactly one result.
type Future func() (Application, error)

// Executor runs the construction task.
type Executor interface {
	Go(task func())
}

// GoExecutor runs each task on its own goroutine, where the future may
// block for as long as device negotiation takes.
type GoExecutor struct{}

// Go implements Executor.
func (GoExecutor) Go(task func()) { go task() }

// InlineExecutor runs the task on the calling goroutine. Use it only with
// futures that complete without blocking, such as a pre-negotiated
// device; the result is still delivered through the loop queue.
type InlineExecutor struct{}

// Go implements Executor.
func (InlineExecutor) Go(task func()) { task() }

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(task func())

// Go implements Executor.
func (f ExecutorFunc) Go(task func()) { f(task) }
