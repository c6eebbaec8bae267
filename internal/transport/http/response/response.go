package response

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	// Reason is the stable machine-readable error code, empty on success.
	Reason string `json:"reason,omitempty"`
	Data   any    `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Fail is Error with a machine-readable reason attached.
func Fail(code int, reason, msg string) Resp {
	r := Error(code, msg)
	r.Reason = reason
	return r
}
