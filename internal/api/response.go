package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
)

type Response struct {
	Data any `json:"data"`
}

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID int64  `json:"product_id,omitempty"`
}

type ResponseError struct {
	Error ErrorBody `json:"error"`
}

func SuccessJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

// ErrorJSON 依錯誤分類決定 status, 非分類錯誤一律 500 且不回傳內部訊息
func ErrorJSON(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ResponseError{Error: ErrorBody{
			Code:    string(apperr.CodeUnknown),
			Message: "internal server error",
		}})
		return
	}

	msg := appErr.Msg
	if appErr.Code == apperr.CodeStorageFailure {
		msg = "storage failure"
	}
	writeJSON(w, apperr.HTTPStatus(appErr.Code), ResponseError{Error: ErrorBody{
		Code:      string(appErr.Code),
		Message:   msg,
		ProductID: appErr.ProductID,
	}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
