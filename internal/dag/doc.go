// Package dag holds a small directed graph of task names used to validate
// same-point dependencies. An edge a -> b means b waits on a at the same
// cycle point, so any cycle means no instance in it could ever run.
package dag
