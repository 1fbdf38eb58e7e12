// Package pool wraps ants goroutine pools with task statistics.
package pool

import "errors"

var (
	// ErrPoolClosed 提交到已释放的池。
	ErrPoolClosed = errors.New("pool: closed")
	// ErrPoolOverload 非阻塞池已满。
	ErrPoolOverload = errors.New("pool: overloaded")
)
