package handlers

import (
	"fmt"
	"net/http"

	"askida/internal/middleware"
)

type messageKey int

const (
	msgRegistered messageKey = iota
	msgLoggedIn
	msgLoggedOut
	msgEmailTaken
	msgEmailNotFound
	msgWrongPassword
	msgUserNotFound
	msgInvalidCredentials
	msgTooManyRequests
	msgInvalidPayload
	msgDonationsFound
	msgNoNearbyDonations
	msgDonationDetail
	msgDonationCreated
	msgDonationUpdated
	msgDonationNotFound
	msgOnlyDonorsPost
	msgOnlyOwnerUpdates
	msgOnlyOwnerDeletes
	msgReserved
	msgAlreadyReserved
	msgOwnDonation
	msgRoleCannotReserve
	msgReservationCancelled
	msgNotReserved
	msgNoCancelAuthority
	msgInternal
)

var catalog = map[string]map[messageKey]string{
	"tr": {
		msgRegistered:           "Kullanıcı başarıyla kaydedildi",
		msgLoggedIn:             "Giriş başarılı",
		msgLoggedOut:            "Çıkış yapıldı",
		msgEmailTaken:           "Bu email zaten kayıtlı.",
		msgEmailNotFound:        "Email bulunamadı.",
		msgWrongPassword:        "Şifre yanlış.",
		msgUserNotFound:         "Kullanıcı bulunamadı.",
		msgInvalidCredentials:   "Kimlik bilgileri doğrulanamadı.",
		msgTooManyRequests:      "Çok fazla istek. Lütfen biraz sonra tekrar deneyin.",
		msgInvalidPayload:       "Geçersiz istek gövdesi.",
		msgDonationsFound:       "%d bağış bulundu",
		msgNoNearbyDonations:    "Yakın bağış bulunamadı",
		msgDonationDetail:       "Bağış detayları",
		msgDonationCreated:      "Bağış başarıyla oluşturuldu",
		msgDonationUpdated:      "Bağış güncellendi",
		msgDonationNotFound:     "Bağış bulunamadı.",
		msgOnlyDonorsPost:       "Sadece bağışçılar bağış oluşturabilir.",
		msgOnlyOwnerUpdates:     "Bu bağışı sadece oluşturan kullanıcı güncelleyebilir.",
		msgOnlyOwnerDeletes:     "Bu bağışı sadece oluşturan kullanıcı silebilir.",
		msgReserved:             "Bağış rezerve edildi",
		msgAlreadyReserved:      "Bu bağış zaten rezerve edilmiş.",
		msgOwnDonation:          "Kendi bağışınızı rezerve edemezsiniz.",
		msgRoleCannotReserve:    "Bu hesap türü bağış rezerve edemez.",
		msgReservationCancelled: "Rezervasyon iptal edildi",
		msgNotReserved:          "Bu bağış rezerve edilmemiş.",
		msgNoCancelAuthority:    "Bu rezervasyonu sadece rezerve eden kullanıcı veya bağışçı iptal edebilir.",
		msgInternal:             "Beklenmeyen bir hata oluştu.",
	},
	"en": {
		msgRegistered:           "User registered successfully",
		msgLoggedIn:             "Login successful",
		msgLoggedOut:            "Logged out",
		msgEmailTaken:           "This email is already registered.",
		msgEmailNotFound:        "Email not found.",
		msgWrongPassword:        "Wrong password.",
		msgUserNotFound:         "User not found.",
		msgInvalidCredentials:   "Could not validate credentials.",
		msgTooManyRequests:      "Too many requests. Please try again shortly.",
		msgInvalidPayload:       "Invalid request body.",
		msgDonationsFound:       "%d donations found",
		msgNoNearbyDonations:    "No nearby donations found",
		msgDonationDetail:       "Donation details",
		msgDonationCreated:      "Donation created successfully",
		msgDonationUpdated:      "Donation updated",
		msgDonationNotFound:     "Donation not found.",
		msgOnlyDonorsPost:       "Only donors can create donations.",
		msgOnlyOwnerUpdates:     "Only the donor who created this donation can update it.",
		msgOnlyOwnerDeletes:     "Only the donor who created this donation can delete it.",
		msgReserved:             "Donation reserved",
		msgAlreadyReserved:      "This donation is already reserved.",
		msgOwnDonation:          "You cannot reserve your own donation.",
		msgRoleCannotReserve:    "This account type cannot reserve donations.",
		msgReservationCancelled: "Reservation cancelled",
		msgNotReserved:          "This donation is not reserved.",
		msgNoCancelAuthority:    "Only the reserving user or the donor can cancel this reservation.",
		msgInternal:             "An unexpected error occurred.",
	},
}

// message renders key in the request locale.
func message(r *http.Request, key messageKey, args ...any) string {
	table, ok := catalog[middleware.LocaleFromContext(r.Context())]
	if !ok {
		table = catalog["tr"]
	}
	text := table[key]
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}
