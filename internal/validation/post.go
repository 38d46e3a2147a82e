// Package validation 写接口的请求体校验
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/postservice/internal/model"
)

// FieldType 字段期望的 JSON 原始类型
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
)

// Reason 校验失败原因
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonType      Reason = "type"
	// ReasonInvalidID 是数字但不是正整数，不可能引用任何分类或状态
	ReasonInvalidID Reason = "invalid_id"
)

// Field 单个必填字段
type Field struct {
	Name string
	Type FieldType
}

// PostSchema 文章必填字段，按声明顺序校验
var PostSchema = []Field{
	{Name: "title", Type: TypeString},
	{Name: "image", Type: TypeString},
	{Name: "category_id", Type: TypeNumber},
	{Name: "description", Type: TypeString},
	{Name: "content", Type: TypeString},
	{Name: "status_id", Type: TypeNumber},
}

// Error 校验错误，Message 可直接返回给调用方
type Error struct {
	Field   string
	Reason  Reason
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(f Field, reason Reason) *Error {
	label := strings.ToUpper(f.Name[:1]) + f.Name[1:]
	msg := label + " is required"
	switch reason {
	case ReasonType:
		msg = fmt.Sprintf("%s must be a %s", label, f.Type)
	case ReasonInvalidID:
		msg = label + " must be a positive integer"
	}
	return &Error{Field: f.Name, Reason: reason, Message: msg}
}

var validate = validator.New()

// Validate 按 schema 顺序校验 payload，遇到第一个问题立即返回。
// 同一字段先查存在性再查类型；空串、0、false 视同缺失。
func Validate(schema []Field, payload map[string]interface{}) error {
	for _, f := range schema {
		value, ok := payload[f.Name]
		if !ok || value == nil || validate.Var(value, "required") != nil {
			return newError(f, ReasonMissing)
		}
		if !hasType(value, f.Type) {
			return newError(f, ReasonType)
		}
	}
	return nil
}

// ValidatePost 校验文章写请求体
func ValidatePost(payload map[string]interface{}) error {
	return Validate(PostSchema, payload)
}

func hasType(value interface{}, t FieldType) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int64, int32, json.Number:
			return true
		}
	}
	return false
}

// DecodePost 将已通过校验的 payload 转为可写字段；
// 关联 ID 必须是正整数，否则按该字段类型错误处理
func DecodePost(payload map[string]interface{}) (model.PostInput, error) {
	if err := ValidatePost(payload); err != nil {
		return model.PostInput{}, err
	}

	categoryID, ok := toID(payload["category_id"])
	if !ok {
		return model.PostInput{}, newError(PostSchema[2], ReasonInvalidID)
	}
	statusID, ok := toID(payload["status_id"])
	if !ok {
		return model.PostInput{}, newError(PostSchema[5], ReasonInvalidID)
	}

	return model.PostInput{
		Title:       payload["title"].(string),
		Image:       payload["image"].(string),
		CategoryID:  categoryID,
		Description: payload["description"].(string),
		Content:     payload["content"].(string),
		StatusID:    statusID,
	}, nil
}

func toID(value interface{}) (int64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		return int64(v), v > 0
	case int32:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case json.Number:
		n, err := v.Int64()
		return n, err == nil && n > 0
	default:
		return 0, false
	}
	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
