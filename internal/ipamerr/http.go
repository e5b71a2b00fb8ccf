package ipamerr

import "net/http"

// HTTPStatus: код ответа для ошибки операции.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindUnsupported:
		return http.StatusNotImplemented
	case KindAuth, KindRemote:
		return http.StatusBadGateway
	case KindConnectivity, KindStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
