package protocol

// Error codes. 1xxx connection, 2xxx admission, 3xxx game flow.
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001
	ErrCodeRateLimit  = 1002

	ErrCodeRoomNotFound = 2001
	ErrCodeRoomFull     = 2002
	ErrCodeGameStarted  = 2003
	ErrCodeNotInRoom    = 2004

	ErrCodeNotHost       = 3001
	ErrCodeNotChooser    = 3002
	ErrCodeWrongPhase    = 3003
	ErrCodeAlreadyDone   = 3004
	ErrCodeSelfVote      = 3005
	ErrCodeNotEnough     = 3006
	ErrCodeTruthWritten  = 3007
	ErrCodeLieTaken      = 3008
	ErrCodeBadSelection  = 3009
	ErrCodeInternalError = 3010
)

// ErrorMessages holds the user-facing text per code. Players are
// Arabic speaking, so these mirror the client copy.
var ErrorMessages = map[int]string{
	ErrCodeUnknown:    "حدث خطأ غير متوقع",
	ErrCodeInvalidMsg: "رسالة غير صالحة",
	ErrCodeRateLimit:  "على مهلك! رسائل كثيرة جدا",

	ErrCodeRoomNotFound: "الكود غلط يا فنان!",
	ErrCodeRoomFull:     "الغرفة ممتلئة!",
	ErrCodeGameStarted:  "اللعبة بدأت بالفعل!",
	ErrCodeNotInRoom:    "أنت لست في هذه الغرفة",

	ErrCodeNotHost:       "الهوست فقط يقدر يسوي هذا",
	ErrCodeNotChooser:    "مو دورك تختار الموضوع",
	ErrCodeWrongPhase:    "هذه الخطوة غير متاحة الآن",
	ErrCodeAlreadyDone:   "أرسلت إجابتك بالفعل",
	ErrCodeSelfVote:      "ما ينفع تصوت لكذبتك!",
	ErrCodeNotEnough:     "لازم لاعبين اثنين على الأقل!",
	ErrCodeTruthWritten:  "يا ذكي! لازم تألف كذبة، ما تكتب الحقيقة!",
	ErrCodeLieTaken:      "سبقك أحد لنفس الكذبة، جرب غيرها!",
	ErrCodeBadSelection:  "اختيار غير صالح",
	ErrCodeInternalError: "صار خطأ داخلي، حاول مرة ثانية",
}
