// Package biz 编排 Embedding 服务的业务流程：规范化、分块、编码、写入与检索。
//
// 各阶段返回的错误在本包内统一映射为 pkg/utils/errors 中的 Errno，
// handler 层只负责把 Errno 写成 HTTP 响应。
package biz
