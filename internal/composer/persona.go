package composer

// RefusalMessage is the fixed sentence the model is instructed to emit
// when the answer is not supported by the supplied context.
const RefusalMessage = "This information is not available in our records."

const basePersona = "You are TRC Desk, the internal assistant for The Reward Collection team. " +
	"Answer questions using only the information provided in the context. " +
	"If the answer is not supported by the context, reply exactly: \"" + RefusalMessage + "\""

const emailPersona = "You are TRC Desk, writing a professional reply email on behalf of a member of The Reward Collection team. " +
	"Use only the information provided in the context. " +
	"If the information needed is not supported by the context, reply exactly: \"" + RefusalMessage + "\""

const shortPersona = "You are a timezone conversion assistant. " +
	"Reply with only the converted clock time in HH:mm format. No commentary, no explanation."

// toneClauses appends a persona clause for email replies. "general" and
// unrecognised tones append nothing.
var toneClauses = map[string]string{
	"sales":           " Write in an upbeat, persuasive sales voice focused on the commercial opportunity.",
	"account manager": " Write as a warm, relationship-focused account manager who knows the partner well.",
	"credit control":  " Write as a firm but courteous credit controller chasing outstanding payments.",
	"legal":           " Write as a careful legal adviser, precise about contractual terms and obligations.",
	"exec team":       " Write as a senior executive: concise, strategic, and authoritative.",
}

// SelectPersona chooses the system instruction for a request. email takes
// precedence over short when both are set; tone only applies to email
// replies.
func SelectPersona(email, short bool, tone string) string {
	switch {
	case email:
		return emailPersona + toneClauses[tone]
	case short:
		return shortPersona
	default:
		return basePersona
	}
}
