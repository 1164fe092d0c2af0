package echoapi

import "github.com/labstack/echo/v4"

// Response is the JSON envelope every endpoint speaks: {success, data?, message?}.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message interface{} `json:"message,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}, msg ...string) error {
	res := Response{Success: true, Data: data}
	if len(msg) > 0 {
		res.Message = msg[0]
	}
	return ctx.JSON(code, res)
}
