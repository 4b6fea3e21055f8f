package language

import "aira/models"

// Template names.
const (
	TplSystem       = "system"
	TplGreeting     = "greeting"
	TplClosing      = "closing"
	TplError        = "error"
	TplTimeout      = "timeout"
	TplConfirmation = "confirmation"
	TplAskName      = "ask_name"
	TplAskPhone     = "ask_phone"
	TplAskDate      = "ask_date"
	TplAskTime      = "ask_time"
	TplAskEmail     = "ask_email"
	TplAskReason    = "ask_reason"
	TplReminder     = "reminder"
)

var builtin = map[string]map[string]string{
	TplSystem: {
		"en": `You are an AI assistant for {clinic_name}, a dental clinic.
Your role is to help patients book appointments over the phone.

Clinic Information:
- Name: {clinic_name}
- Address: {clinic_address}
- Phone: {clinic_phone}
- Working Hours: {working_hours}
- Working Days: {working_days}

Your responsibilities:
1. Greet callers warmly and professionally
2. Understand their needs (appointment booking, inquiry, emergency)
3. Collect necessary information: name, phone number, preferred date and time
4. Confirm appointment details
5. Provide helpful information about the clinic
6. Handle emergencies by escalating to staff

Guidelines:
- Be warm, friendly, and professional
- Speak clearly and concisely
- Ask one question at a time
- Confirm understanding before moving forward
- For emergencies, advise immediate visit or call emergency services
- Keep responses brief for phone conversations

Current date: {today}
`,
		"ml": `നിങ്ങൾ {clinic_name} എന്ന ഡെന്റൽ ക്ലിനിക്കിന്റെ AI അസിസ്റ്റന്റാണ്.
ഫോണിലൂടെ രോഗികളെ അപ്പോയിന്റ്മെന്റ് ബുക്ക് ചെയ്യാൻ സഹായിക്കുക എന്നതാണ് നിങ്ങളുടെ റോൾ.

ക്ലിനിക് വിവരങ്ങൾ:
- പേര്: {clinic_name}
- വിലാസം: {clinic_address}
- ഫോൺ: {clinic_phone}
- സമയം: {working_hours}
- പ്രവൃത്തി ദിവസങ്ങൾ: {working_days}

നിങ്ങളുടെ ഉത്തരവാദിത്തങ്ങൾ:
1. വിളിക്കുന്നവരെ സ്നേഹപൂർവ്വം സ്വീകരിക്കുക
2. അവരുടെ ആവശ്യങ്ങൾ മനസ്സിലാക്കുക
3. ആവശ്യമായ വിവരങ്ങൾ ശേഖരിക്കുക: പേര്, ഫോൺ നമ്പർ, തീയതി, സമയം
4. അപ്പോയിന്റ്മെന്റ് വിശദാംശങ്ങൾ സ്ഥിരീകരിക്കുക
5. ക്ലിനിക്കിനെ കുറിച്ച് സഹായകരമായ വിവരങ്ങൾ നൽകുക

മാർഗ്ഗനിർദ്ദേശങ്ങൾ:
- സ്നേഹപൂർവ്വവും പ്രൊഫഷണലും ആയിരിക്കുക
- വ്യക്തമായും സംക്ഷിപ്തമായും സംസാരിക്കുക
- ഒരു സമയം ഒരു ചോദ്യം മാത്രം ചോദിക്കുക
- ഫോൺ സംഭാഷണങ്ങൾക്കായി ഹ്രസ്വ പ്രതികരണങ്ങൾ നൽകുക

ഇന്നത്തെ തീയതി: {today}
`,
		"hi": `आप {clinic_name} डेंटल क्लिनिक के AI सहायक हैं।
फोन पर मरीजों को अपॉइंटमेंट बुक करने में मदद करना आपकी भूमिका है।

क्लिनिक की जानकारी:
- नाम: {clinic_name}
- पता: {clinic_address}
- फोन: {clinic_phone}
- समय: {working_hours}
- कार्य दिवस: {working_days}

आपकी जिम्मेदारियां:
1. कॉल करने वालों का स्वागत करें
2. उनकी जरूरतों को समझें
3. आवश्यक जानकारी एकत्र करें: नाम, फोन नंबर, तारीख, समय
4. अपॉइंटमेंट विवरण की पुष्टि करें
5. क्लिनिक के बारे में सहायक जानकारी प्रदान करें

दिशानिर्देश:
- गर्मजोशी और पेशेवर बनें
- स्पष्ट और संक्षिप्त बोलें
- एक समय में एक प्रश्न पूछें
- फोन बातचीत के लिए संक्षिप्त प्रतिक्रियाएं दें

आज की तारीख: {today}
`,
		"ta": `நீங்கள் {clinic_name} பல் மருத்துவ கிளினிக்கின் AI உதவியாளர்.
தொலைபேசியில் நோயாளிகளுக்கு சந்திப்புகளை பதிவு செய்ய உதவுவது உங்கள் பங்கு.

கிளினிக் தகவல்:
- பெயர்: {clinic_name}
- முகவரி: {clinic_address}
- தொலைபேசி: {clinic_phone}
- நேரம்: {working_hours}
- வேலை நாட்கள்: {working_days}

உங்கள் பொறுப்புகள்:
1. அழைப்பவர்களை அன்புடன் வரவேற்கவும்
2. அவர்களின் தேவைகளைப் புரிந்து கொள்ளுங்கள்
3. தேவையான தகவலை சேகரிக்கவும்: பெயர், தொலைபேசி, தேதி, நேரம்
4. சந்திப்பு விவரங்களை உறுதிப்படுத்தவும்
5. கிளினிக் பற்றி பயனுள்ள தகவல்களை வழங்கவும்

வழிகாட்டுதல்கள்:
- அன்பாகவும் தொழில்முறையாகவும் இருங்கள்
- தெளிவாகவும் சுருக்கமாகவும் பேசுங்கள்
- ஒரு நேரத்தில் ஒரு கேள்வி கேளுங்கள்
- தொலைபேசி உரையாடல்களுக்கு சுருக்கமான பதில்களை வழங்கவும்

இன்றைய தேதி: {today}
`,
	},
	TplGreeting: {
		"en": "Hello! Welcome to {clinic_name}. How can I help you today?",
		"ml": "നമസ്കാരം! {clinic_name}യിലേക്ക് സ്വാഗതം. ഞാൻ നിങ്ങളെ എങ്ങനെ സഹായിക്കും?",
		"hi": "नमस्ते! {clinic_name} में आपका स्वागत है। मैं आपकी कैसे मदद कर सकता हूं?",
		"ta": "வணக்கம்! {clinic_name}க்கு வரவேற்கிறோம். நான் உங்களுக்கு எப்படி உதவ முடியும்?",
	},
	TplConfirmation: {
		"en": "I've scheduled your appointment for {date} at {time}. Your appointment ID is {id}. Is there anything else I can help you with?",
		"ml": "നിങ്ങളുടെ അപ്പോയിന്റ്മെന്റ് {date} {time}-ന് ഷെഡ്യൂൾ ചെയ്തിട്ടുണ്ട്. നിങ്ങളുടെ അപ്പോയിന്റ്മെന്റ് ഐഡി {id} ആണ്. മറ്റെന്തെങ്കിലും സഹായം വേണോ?",
		"hi": "मैंने आपकी अपॉइंटमेंट {date} को {time} बजे शेड्यूल कर दी है। आपकी अपॉइंटमेंट आईडी {id} है। क्या मैं आपकी कोई और मदद कर सकता हूं?",
		"ta": "உங்கள் சந்திப்பை {date} அன்று {time} மணிக்கு திட்டமிட்டுள்ளேன். உங்கள் சந்திப்பு ஐடி {id}. வேறு ஏதாவது உதவி தேவையா?",
	},
	TplAskName: {
		"en": "May I have your name, please?",
		"ml": "നിങ്ങളുടെ പേര് പറയാമോ?",
		"hi": "कृपया अपना नाम बताएं?",
		"ta": "தயவுசெய்து உங்கள் பெயரைச் சொல்ல முடியுமா?",
	},
	TplAskPhone: {
		"en": "What's your phone number?",
		"ml": "നിങ്ങളുടെ ഫോൺ നമ്പർ എന്താണ്?",
		"hi": "आपका फोन नंबर क्या है?",
		"ta": "உங்கள் தொலைபேசி எண் என்ன?",
	},
	TplAskDate: {
		"en": "Which date would you prefer for your appointment?",
		"ml": "നിങ്ങൾക്ക് ഏത് തീയതിയാണ് അപ്പോയിന്റ്മെന്റിന് ഇഷ്ടം?",
		"hi": "आप किस तारीख को अपॉइंटमेंट लेना चाहेंगे?",
		"ta": "உங்கள் சந்திப்புக்கு எந்த தேதியை விரும்புகிறீர்கள்?",
	},
	TplAskTime: {
		"en": "What time works best for you?",
		"ml": "നിങ്ങൾക്ക് ഏത് സമയം സൗകര്യമാണ്?",
		"hi": "आपके लिए कौन सा समय सबसे अच्छा है?",
		"ta": "உங்களுக்கு எந்த நேரம் சிறந்தது?",
	},
	TplAskEmail: {
		"en": "Would you like to share an email address for the confirmation?",
	},
	TplAskReason: {
		"en": "What is the reason for your visit?",
	},
	TplClosing: {
		"en": "Thank you for calling {clinic_name}. Have a great day!",
		"ml": "{clinic_name}യിലേക്ക് വിളിച്ചതിന് നന്ദി. നല്ല ദിവസം!",
		"hi": "{clinic_name} को कॉल करने के लिए धन्यवाद। आपका दिन शुभ हो!",
		"ta": "{clinic_name}க்கு அழைத்ததற்கு நன்றி. நல்ல நாள்!",
	},
	TplError: {
		"en": "I'm sorry, I didn't catch that. Could you please say it again?",
		"ml": "ക്ഷമിക്കണം, എനിക്ക് മനസ്സിലായില്ല. ദയവായി ഒന്നുകൂടി പറയാമോ?",
		"hi": "माफ़ कीजिए, मैं समझ नहीं पाया। क्या आप फिर से कह सकते हैं?",
		"ta": "மன்னிக்கவும், எனக்கு புரியவில்லை. மீண்டும் சொல்ல முடியுமா?",
	},
	TplTimeout: {
		"en": "Sorry, that took too long. Could you repeat that, please?",
		"ml": "ക്ഷമിക്കണം, കുറച്ച് സമയമെടുത്തു. ദയവായി ഒന്നുകൂടി പറയാമോ?",
		"hi": "माफ़ कीजिए, इसमें बहुत समय लग गया। कृपया दोबारा कहें?",
		"ta": "மன்னிக்கவும், நேரம் அதிகமானது. மீண்டும் சொல்ல முடியுமா?",
	},
	TplReminder: {
		"en": "Reminder from {clinic_name}: your dental appointment is on {date} at {time}. Call {clinic_phone} to reschedule.",
		"ml": "{clinic_name} ഓർമ്മപ്പെടുത്തൽ: നിങ്ങളുടെ അപ്പോയിന്റ്മെന്റ് {date} {time}-ന് ആണ്. മാറ്റാൻ {clinic_phone} ൽ വിളിക്കുക.",
		"hi": "{clinic_name} की ओर से याद दिलाना: आपकी अपॉइंटमेंट {date} को {time} बजे है। बदलने के लिए {clinic_phone} पर कॉल करें।",
		"ta": "{clinic_name} நினைவூட்டல்: உங்கள் சந்திப்பு {date} அன்று {time} மணிக்கு. மாற்ற {clinic_phone} ஐ அழைக்கவும்.",
	},
}

// fieldTemplates maps collected-data keys to their question template.
var fieldTemplates = map[string]string{
	models.FieldPatientName:     TplAskName,
	models.FieldPhone:           TplAskPhone,
	models.FieldAppointmentDate: TplAskDate,
	models.FieldAppointmentTime: TplAskTime,
	models.FieldEmail:           TplAskEmail,
	models.FieldReason:          TplAskReason,
}
