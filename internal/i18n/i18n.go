// Package i18n holds the user-visible message table. Lookups are keyed by a
// typed Key and fall back to English, then to a generic message.
package i18n

import "strings"

type Lang string

const (
	EN Lang = "en"
	HI Lang = "hi"
	MR Lang = "mr"
)

const Default = EN

type Key string

const (
	KeyInvalidCredentials    Key = "invalid_credentials"
	KeyAccountLocked         Key = "account_locked"
	KeyUsernameTaken         Key = "username_taken"
	KeyEmailTaken            Key = "email_taken"
	KeyMissingFields         Key = "missing_fields"
	KeyWeakPassword          Key = "weak_password"
	KeyPasswordTooLong       Key = "password_too_long"
	KeyPasswordMismatch      Key = "password_mismatch"
	KeyInvalidEmail          Key = "invalid_email"
	KeyInvalidRole           Key = "invalid_role"
	KeyInvalidFarmSize       Key = "invalid_farm_size"
	KeyInvalidRecord         Key = "invalid_record"
	KeyInvalidImage          Key = "invalid_image"
	KeyInvalidLocation       Key = "invalid_location"
	KeyInsufficientPrivilege Key = "insufficient_privilege"
	KeyUserNotFound          Key = "user_not_found"
	KeyTryAgain              Key = "try_again"
	KeyRegistered            Key = "registered"
)

var table = map[Lang]map[Key]string{
	EN: {
		KeyInvalidCredentials:    "Invalid credentials",
		KeyAccountLocked:         "Too many failed attempts. Please try again later",
		KeyUsernameTaken:         "Username already exists",
		KeyEmailTaken:            "Email is already registered",
		KeyMissingFields:         "Please fill in all required fields",
		KeyWeakPassword:          "Password must be at least 8 characters",
		KeyPasswordTooLong:       "Password must be at most 72 bytes",
		KeyPasswordMismatch:      "Passwords do not match",
		KeyInvalidEmail:          "Please enter a valid email",
		KeyInvalidRole:           "Unknown role",
		KeyInvalidFarmSize:       "Farm size cannot be negative",
		KeyInvalidRecord:         "Please check the record fields",
		KeyInvalidImage:          "Please upload a clear photo of a plant leaf",
		KeyInvalidLocation:       "Please enter a location",
		KeyInsufficientPrivilege: "Admin access required",
		KeyUserNotFound:          "User not found",
		KeyTryAgain:              "Something went wrong. Please try again",
		KeyRegistered:            "Registration successful! Please login",
	},
	HI: {
		KeyInvalidCredentials: "अमान्य क्रेडेंशियल",
		KeyAccountLocked:      "बहुत सारे असफल प्रयास। कृपया बाद में पुनः प्रयास करें",
		KeyUsernameTaken:      "उपयोगकर्ता नाम पहले से मौजूद है",
		KeyEmailTaken:         "ईमेल पहले से पंजीकृत है",
		KeyPasswordMismatch:   "पासवर्ड मेल नहीं खाते",
		KeyInvalidEmail:       "कृपया एक मान्य ईमेल दर्ज करें",
		KeyTryAgain:           "कुछ गलत हो गया। कृपया पुनः प्रयास करें",
		KeyRegistered:         "पंजीकरण सफल! कृपया लॉगिन करें",
	},
	MR: {
		KeyInvalidCredentials: "अवैध क्रेडेन्शियल",
		KeyAccountLocked:      "अनेक अयशस्वी प्रयत्न. कृपया नंतर पुन्हा प्रयत्न करा",
		KeyUsernameTaken:      "वापरकर्तानाव आधीच अस्तित्वात आहे",
		KeyEmailTaken:         "ईमेल आधीच नोंदणीकृत आहे",
		KeyPasswordMismatch:   "पासवर्ड जुळत नाहीत",
		KeyInvalidEmail:       "कृपया वैध ईमेल प्रविष्ट करा",
		KeyTryAgain:           "काहीतरी चूक झाली. कृपया पुन्हा प्रयत्न करा",
		KeyRegistered:         "नोंदणी यशस्वी! कृपया लॉगिन करा",
	},
}

// T returns the message for k in lang, then in English, then the generic
// try-again message.
func T(lang Lang, k Key) string {
	if s, ok := table[lang][k]; ok {
		return s
	}
	if s, ok := table[Default][k]; ok {
		return s
	}
	return table[Default][KeyTryAgain]
}

// Parse picks the first supported language from an Accept-Language header.
func Parse(header string) Lang {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		base := strings.SplitN(tag, "-", 2)[0]
		switch Lang(base) {
		case EN, HI, MR:
			return Lang(base)
		}
	}
	return Default
}
