// Package toast implements the transient notification queue.
// A Manager owns the ordered set of live toasts and expires each one on its
// own timer; a Provider is the mount point through which the rest of the
// application reaches the Manager, normally carried in a context.Context.
package toast
