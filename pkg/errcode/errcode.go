package errcode

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类，决定调用方如何处理
type Kind int

const (
	KindInput  Kind = iota // 参数错误，无副作用
	KindDomain             // 业务规则拒绝，已执行的写操作必须回滚
	KindAuth               // 认证/权限
	KindInfra              // 数据库等基础设施故障
)

// Error 带业务码的错误
//
// Code 为字母数字编码（如 P2015），Status 为对应的 HTTP 状态码。
// 同一个 Code 的哨兵值可以用 errors.Is 比较，WithCause 派生出的错误仍然与哨兵相等。
type Error struct {
	Code          string
	Message       string
	ClientMessage string
	Status        int
	Kind          Kind
	cause         error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is 按 Code 比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause 返回携带原始错误的副本，原始错误用于日志诊断
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

func newError(kind Kind, code, message, clientMessage string, status int) *Error {
	return &Error{
		Code:          code,
		Message:       message,
		ClientMessage: clientMessage,
		Status:        status,
		Kind:          kind,
	}
}

// ============================================================================
// A: 账户
// ============================================================================

var (
	// 登录 A1010
	ErrInvalidUser     = newError(KindAuth, "A1011", "INVALID USER", "아이디를 확인하세요", http.StatusUnauthorized)
	ErrWrongPassword   = newError(KindAuth, "A1012", "WRONG PASSWORD", "비밀번호를 확인하세요", http.StatusUnauthorized)
	ErrNotValidatedYet = newError(KindAuth, "A1014", "NOT VALIDATED YET", "입점 승인 후 이용 가능합니다", http.StatusUnauthorized)

	// 入驻 A1020
	ErrDuplicatedID          = newError(KindDomain, "A1021", "DUPLICATED_ID", "중복되는 아이디 입니다.", http.StatusConflict)
	ErrInvalidSellerInfo     = newError(KindInput, "A1022", "INVALID_SELLER_INFO", "셀러 정보 없음", http.StatusBadRequest)
	ErrDuplicatedKoreanName  = newError(KindDomain, "A1024", "DUPLICATED_KOREAN_NAME", "셀러명 중복", http.StatusBadRequest)
	ErrDuplicatedEnglishName = newError(KindDomain, "A1025", "DUPLICATED_ENGLISH_NAME", "영문 셀러명 중복", http.StatusBadRequest)
	ErrDuplicatedCsContact   = newError(KindDomain, "A1026", "DUPLICATED_CS_CONTACT", "고객센터 번호 중복", http.StatusBadRequest)

	// 卖家信息 A1030
	ErrNoAccount = newError(KindDomain, "A1031", "NO_ACCOUNT", "요청한 셀러 정보 없음", http.StatusBadRequest)

	// 登录中间件 A1040
	ErrNoToken      = newError(KindAuth, "A1041", "NO TOKEN", "로그인 이후 사용 가능합니다.", http.StatusUnauthorized)
	ErrInvalidToken = newError(KindAuth, "A1042", "INVALID TOKEN", "로그인 이후 사용 가능합니다.", http.StatusUnauthorized)
	ErrUnauthorized = newError(KindAuth, "A1043", "UNAUTHORIZED", "접근 불가능한 페이지입니다.", http.StatusForbidden)

	// 卖家状态变更 A1050
	ErrInvalidSellerAction = newError(KindDomain, "A1051", "INVALID_REQUEST", "셀러 상태를 재확인하세요.", http.StatusBadRequest)

	// 卖家列表 A1060
	ErrInvalidPage = newError(KindInput, "A1061", "INVALID_PAGE", "페이지가 유효하지 않습니다.", http.StatusBadRequest)
)

// ============================================================================
// P: 商品 / 下单
// ============================================================================

var (
	ErrProductNotFound   = newError(KindDomain, "P2011", "INVALID_PRODUCT", "조회 불가능한 상품입니다", http.StatusBadRequest)
	ErrProductDeleted    = newError(KindDomain, "P2012", "INVALID_PRODUCT", "판매가 종료된 상품입니다", http.StatusBadRequest)
	ErrProductNotOnSale  = newError(KindDomain, "P2013", "INVALID_PRODUCT", "현재 미판매중인 상품입니다", http.StatusBadRequest)
	ErrOptionUnavailable = newError(KindDomain, "P2014", "INVALID_OPTION_QUANTITY", "옵션과 수량을 다시 선택해 주세요", http.StatusBadRequest)
	ErrInsufficientStock = newError(KindDomain, "P2015", "INVALID_QUANTITY", "수량을 조정해주세요", http.StatusBadRequest)

	// 商品状态变更 P2020
	ErrNoProductChange = newError(KindInput, "P2021", "NO DETAIL REQUEST", "변경 내용을 전송하세요", http.StatusBadRequest)
)

// ============================================================================
// O: 订单
// ============================================================================

var (
	ErrStatusMismatch    = newError(KindDomain, "O3011", "REQUEST DOES NOT MATCH", "주문의 상태를 다시 확인하세요", http.StatusBadRequest)
	ErrInvalidTransition = newError(KindDomain, "O3012", "INVALID TRANSITION", "더 이상 변경할 수 없는 주문 상태입니다", http.StatusBadRequest)
)

// ============================================================================
// C: 通用
// ============================================================================

var (
	ErrInternal    = newError(KindInfra, "C0001", "KEY_ERROR", "필수정보를 입력하세요", http.StatusInternalServerError)
	ErrDBOpen      = newError(KindInfra, "C0002", "DB_ERROR", "DB_Connection 실패", http.StatusNotImplemented)
	ErrDBClose     = newError(KindInfra, "C0003", "DB_ERROR", "DB_Closing 실패", http.StatusNotImplemented)
	ErrMasterOnly  = newError(KindAuth, "C0004", "NO_AUTHORIZATION", "마스터 이외 접근 불가", http.StatusForbidden)
	ErrInvalidType = newError(KindInput, "C0005", "KEY_TYPE ERROR", "데이터 타입 확인하세요", http.StatusBadRequest)
	ErrNoData      = newError(KindInput, "C0006", "NO DATA", "데이터를 전송하세요", http.StatusBadRequest)
	ErrSellerOnly  = newError(KindAuth, "C0007", "NO_AUTHORIZATION", "셀러 이외 접근 불가", http.StatusForbidden)
)

// Internal 把非预期错误包装为 C0001，已经是 *Error 的原样返回
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return ErrInternal.WithCause(err)
}

// From 提取 *Error，非业务错误一律视为 C0001
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}
