package handlers

// Hindi copies of the user-facing error messages, keyed by error code. The
// English message passed at the call site stays the fallback for every other
// locale and for codes without a translation.
var hindiMessages = map[string]string{
	"unauthorized":           "कृपया दोबारा साइन इन करें",
	"bad_request":            "अनुरोध समझा नहीं जा सका",
	"not_found":              "यह रिकॉर्ड नहीं मिला",
	"insufficient_credits":   "पर्याप्त क्रेडिट नहीं हैं, प्लान लें या क्रेडिट जोड़ें",
	"rate_limited":           "अभी बहुत अनुरोध हैं, थोड़ी देर में फिर कोशिश करें",
	"provider_quota":         "इमेज सेवा का कोटा खत्म हो गया है",
	"provider_error":         "इमेज नहीं बन पाई, फिर कोशिश करें",
	"bad_image":              "बैकग्राउंड इमेज पढ़ी नहीं जा सकी",
	"enhance_unavailable":    "एन्हांस सुविधा अभी उपलब्ध नहीं है",
	"unsupported_plan":       "plan_type weekly या monthly होना चाहिए",
	"payment_provider_error": "भुगतान ऑर्डर नहीं बन पाया",
	"invalid_signature":      "भुगतान सत्यापन विफल रहा",
	"order_processed":        "यह ऑर्डर पहले ही प्रोसेस हो चुका है",
	"plan_grant_failed":      "भुगतान दर्ज हुआ पर प्लान नहीं मिला, सहायता से संपर्क करें",
	"internal":               "कुछ गलत हो गया, फिर कोशिश करें",
}

func localizedMessage(locale, code, fallback string) string {
	if locale == "hi" {
		if msg, ok := hindiMessages[code]; ok {
			return msg
		}
	}
	return fallback
}
