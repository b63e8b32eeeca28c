package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage returns a copy of the Errno carrying a more specific message
func (e Errno) WithMessage(msg string) Errno {
	e.Message = msg
	return e
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Verification Errors (20100+)
// 链上校验失败分两类: 幂等冲突永不重试; 链上负结果由调用方按需轮询。
// ErrChainRead 是基础设施故障, 可安全重试。
var (
	ErrAlreadyProcessed    = Errno{Code: 20101, Message: "Transaction already processed"}
	ErrTransactionReverted = Errno{Code: 20102, Message: "Transaction reverted"}
	ErrNoValidBurn         = Errno{Code: 20103, Message: "No valid burn detected"}
	ErrNoValidAction       = Errno{Code: 20104, Message: "No valid action detected"}
	ErrChainRead           = Errno{Code: 20105, Message: "Chain read failed, retry later"}
)

// Eligibility Errors (20200+)
var (
	ErrNotSubscriber       = Errno{Code: 20201, Message: "Not a subscriber"}
	ErrSubscriptionExpired = Errno{Code: 20202, Message: "Subscription expired"}
	ErrDailyFreeLimit      = Errno{Code: 20203, Message: "Daily free boost already used"}
	ErrInsufficientPayment = Errno{Code: 20204, Message: "Insufficient payment"}
	ErrInvalidRecipient    = Errno{Code: 20205, Message: "Invalid payment recipient"}
	ErrCooldownActive      = Errno{Code: 20206, Message: "Cooldown active"}
	ErrInvalidPlan         = Errno{Code: 20207, Message: "Invalid plan"}
)

// Misc Business Errors (20300+)
var (
	ErrUserNotFound   = Errno{Code: 20301, Message: "User not found"}
	ErrCastNotFound   = Errno{Code: 20302, Message: "Failed to fetch cast"}
	ErrUpstreamFailed = Errno{Code: 20303, Message: "Upstream service unavailable"}
)
