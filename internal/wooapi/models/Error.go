package models

import "fmt"

const (
	CodeTermExists = "term_exists"
	CodeInvalidSku = "product_invalid_sku"
)

type ErrorWoo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
		Params struct {
			Display string `json:"display"`
		} `json:"params"`
		Details struct {
			Display struct {
				Code    string      `json:"code"`
				Message string      `json:"message"`
				Data    interface{} `json:"data"`
			} `json:"display"`
		} `json:"details"`
		ResourceId int `json:"resource_id"`
	} `json:"data"`
}

func (e *ErrorWoo) Error() string {
	return fmt.Sprintf("code:%s; message:%s; status:%d; resource_id:%d;",
		e.Code,
		e.Message,
		e.Data.Status,
		e.Data.ResourceId,
	)
}
