package ssml

// Languages.
const (
	LangZhCN = "zh-CN"
	LangZhHK = "zh-HK"
	LangZhTW = "zh-TW"
	LangEnUS = "en-US"
	LangEnGB = "en-GB"
	LangDeDE = "de-DE"
	LangFrFR = "fr-FR"
	LangJaJP = "ja-JP"
	LangRuRU = "ru-RU"
	LangItIT = "it-IT"
	LangEsES = "es-ES"
)

// Speaking rates.
const (
	RateXSlow   = "x-slow"
	RateSlow    = "slow"
	RateMedium  = "medium"
	RateFast    = "fast"
	RateXFast   = "x-fast"
	RateDefault = "default"
)

// Speaking styles. Not every voice supports every style.
const (
	StyleAffectionate          = "affectionate"
	StyleAngry                 = "angry"
	StyleAssistant             = "assistant"
	StyleCalm                  = "calm"
	StyleChat                  = "chat"
	StyleCheerful              = "cheerful"
	StyleCustomerService       = "customerservice"
	StyleDepressed             = "depressed"
	StyleDisgruntled           = "disgruntled"
	StyleEmbarrassed           = "embarrassed"
	StyleEmpathetic            = "empathetic"
	StyleEnvious               = "envious"
	StyleFearful               = "fearful"
	StyleGentle                = "gentle"
	StyleLyrical               = "lyrical"
	StyleNarrationProfessional = "narration-professional"
	StyleNarrationRelaxed      = "narration-relaxed"
	StyleNewscast              = "newscast"
	StyleNewscastCasual        = "newscast-casual"
	StyleNewscastFormal        = "newscast-formal"
	StyleSad                   = "sad"
	StyleSerious               = "serious"
)

// Role-play voices.
const (
	RoleGirl             = "Girl"
	RoleBoy              = "Boy"
	RoleYoungAdultFemale = "YoungAdultFemale"
	RoleYoungAdultMale   = "YoungAdultMale"
	RoleOlderAdultFemale = "OlderAdultFemale"
	RoleOlderAdultMale   = "OlderAdultMale"
	RoleSeniorFemale     = "SeniorFemale"
	RoleSeniorMale       = "SeniorMale"
)

// Neural voice names.
const (
	VoiceEnUSAna               = "en-US-AnaNeural"
	VoiceEnGBMaisie            = "en-GB-MaisieNeural"
	VoiceZhCNXiaoshuang        = "zh-CN-XiaoshuangNeural"
	VoiceZhCNYunxi             = "zh-CN-YunxiNeural"
	VoiceZhCNXiaoxiao          = "zh-CN-XiaoxiaoNeural"
	VoiceZhHKWanLung           = "zh-HK-WanLungNeural"
	VoiceZhHKHiuGaai           = "zh-HK-HiuGaaiNeural"
	VoiceZhTWYunJhe            = "zh-TW-YunJheNeural"
	VoiceZhTWHsiaoChen         = "zh-TW-HsiaoChenNeural"
	VoiceEnGBRyan              = "en-GB-RyanNeural"
	VoiceEnGBSonia             = "en-GB-SoniaNeural"
	VoiceEnUSGuy               = "en-US-GuyNeural"
	VoiceEnUSDavis             = "en-US-DavisNeural"
	VoiceEnUSAria              = "en-US-AriaNeural"
	VoiceEnUSJenny             = "en-US-JennyNeural"
	VoiceEnUSJennyMultilingual = "en-US-JennyMultilingualNeural"
	VoiceJaJPKeita             = "ja-JP-KeitaNeural"
	VoiceJaJPNanami            = "ja-JP-NanamiNeural"
	VoiceRuRUDmitry            = "ru-RU-DmitryNeural"
	VoiceDeDEConrad            = "de-DE-ConradNeural"
	VoiceDeDEKatja             = "de-DE-KatjaNeural"
	VoiceDeDEGisela            = "de-DE-GiselaNeural"
	VoiceFrFRHenri             = "fr-FR-HenriNeural"
	VoiceFrFRDenise            = "fr-FR-DeniseNeural"
	VoiceFrFREloise            = "fr-FR-EloiseNeural"
	VoiceItITDiego             = "it-IT-DiegoNeural"
	VoiceItITElsa              = "it-IT-ElsaNeural"
	VoiceEsESAlvaro            = "es-ES-AlvaroNeural"
	VoiceEsESElvira            = "es-ES-ElviraNeural"
)

// Gender of a catalogued voice.
type Gender string

const (
	Female Gender = "female"
	Male   Gender = "male"
	Child  Gender = "child"
)

// VoiceInfo describes a catalogued voice.
type VoiceInfo struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   Gender `json:"gender"`
}

// Voices is the catalog of well-known voices.
var Voices = []VoiceInfo{
	{VoiceEnUSAna, LangEnUS, Child},
	{VoiceEnGBMaisie, LangEnGB, Child},
	{VoiceZhCNXiaoshuang, LangZhCN, Child},
	{VoiceFrFREloise, LangFrFR, Child},
	{VoiceDeDEGisela, LangDeDE, Child},
	{VoiceZhCNYunxi, LangZhCN, Male},
	{VoiceZhHKWanLung, LangZhHK, Male},
	{VoiceZhTWYunJhe, LangZhTW, Male},
	{VoiceEnGBRyan, LangEnGB, Male},
	{VoiceEnUSGuy, LangEnUS, Male},
	{VoiceEnUSDavis, LangEnUS, Male},
	{VoiceJaJPKeita, LangJaJP, Male},
	{VoiceRuRUDmitry, LangRuRU, Male},
	{VoiceDeDEConrad, LangDeDE, Male},
	{VoiceFrFRHenri, LangFrFR, Male},
	{VoiceItITDiego, LangItIT, Male},
	{VoiceEsESAlvaro, LangEsES, Male},
	{VoiceZhCNXiaoxiao, LangZhCN, Female},
	{VoiceZhHKHiuGaai, LangZhHK, Female},
	{VoiceZhTWHsiaoChen, LangZhTW, Female},
	{VoiceEnGBSonia, LangEnGB, Female},
	{VoiceEnUSAria, LangEnUS, Female},
	{VoiceEnUSJenny, LangEnUS, Female},
	{VoiceEnUSJennyMultilingual, LangEnUS, Female},
	{VoiceJaJPNanami, LangJaJP, Female},
	{VoiceDeDEKatja, LangDeDE, Female},
	{VoiceFrFRDenise, LangFrFR, Female},
	{VoiceItITElsa, LangItIT, Female},
	{VoiceEsESElvira, LangEsES, Female},
}

// VoicesFor returns the catalogued voices for a language.
func VoicesFor(lang string) []VoiceInfo {
	var out []VoiceInfo
	for _, v := range Voices {
		if v.Language == lang {
			out = append(out, v)
		}
	}
	return out
}
