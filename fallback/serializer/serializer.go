// Package serializer 负责降级缓存条目的编解码。
//
// 协调器把整条画像记录编码为字节序列后写入次级存储，降级读取时
// 再解码还原。格式在协调器构造时一次性选定，主存储和缓存共享同
// 一份结构体标签，保证字段身份跨格式稳定。
package serializer

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/studyloop/aegis/xerrors"
)

// 支持的编码格式
const (
	// FormatJSON 标准库 JSON，可读性好，便于人工排查缓存内容
	FormatJSON = "json"

	// FormatMsgpack MessagePack 二进制编码，体积更小、编解码更快，
	// 适合高频降级读写
	FormatMsgpack = "msgpack"
)

// 错误定义
var (
	// ErrUnsupportedSerializer 不支持的编码格式
	ErrUnsupportedSerializer = xerrors.New("serializer: unsupported format")
)

// Serializer 缓存条目编解码接口
type Serializer interface {
	// Marshal 将记录编码为缓存值
	Marshal(value any) ([]byte, error)

	// Unmarshal 将缓存值解码到 dest 指向的记录
	Unmarshal(data []byte, dest any) error
}

// New 按格式名创建编解码器，空字符串等同于 json
func New(format string) (Serializer, error) {
	switch format {
	case FormatJSON, "":
		return jsonSerializer{}, nil
	case FormatMsgpack:
		return msgpackSerializer{}, nil
	default:
		return nil, xerrors.Wrapf(ErrUnsupportedSerializer, "%q", format)
	}
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

func (jsonSerializer) Unmarshal(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

type msgpackSerializer struct{}

func (msgpackSerializer) Marshal(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

func (msgpackSerializer) Unmarshal(data []byte, dest any) error {
	return msgpack.Unmarshal(data, dest)
}
