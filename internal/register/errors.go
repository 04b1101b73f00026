package register

import "errors"

var (
	// ErrAlreadyOpen / ErrAlreadyClosed - beklenen ön koşul hataları,
	// hiçbir yazma yapılmadan döner
	ErrAlreadyOpen   = errors.New("kasa zaten açık")
	ErrAlreadyClosed = errors.New("kasa zaten kapalı")

	ErrRegisterNotFound = errors.New("kasa kaydı bulunamadı")
	ErrInvalidAmount    = errors.New("tutar geçersiz")

	// ErrInconsistentState - oturum penceresi end < start gibi onarılamaz bir
	// durum. Sessizce düzeltilmez, işlem iptal edilir.
	ErrInconsistentState = errors.New("kasa durumu tutarsız")
)
