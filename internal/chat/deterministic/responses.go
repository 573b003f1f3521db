package deterministic

// Intent names a deterministic answer category.
type Intent string

const (
	IntentGreeting  Intent = "greeting"
	IntentHours     Intent = "hours"
	IntentLocation  Intent = "location"
	IntentPhone     Intent = "phone"
	IntentInsurance Intent = "insurance"
	IntentServices  Intent = "services"
	IntentHelp      Intent = "help"
)

// Bilingual holds a response in both supported languages.
type Bilingual struct {
	EN string
	ES string
}

// For returns the response for the requested language, falling back to
// English when no translation exists.
func (b Bilingual) For(language string) string {
	if language == "es" && b.ES != "" {
		return b.ES
	}
	return b.EN
}

// ResponseSet is a profile's canned answers plus the domain keywords that
// route a query to retrieval instead of a canned answer.
type ResponseSet struct {
	Intents map[Intent]Bilingual

	// DomainKeywords extend the shared question-pattern gate with terms
	// specific to the profile's knowledge base.
	DomainKeywords []string
}

// ResponsesFor returns the response set for a profile name. Unknown names
// fall back to the finance set, mirroring the default active profile.
func ResponsesFor(profile string) ResponseSet {
	if profile == "pharmacy" {
		return pharmacyResponses
	}
	return financeResponses
}

var financeResponses = ResponseSet{
	DomainKeywords: []string{
		"payment", "payments", "card", "cards", "invoice", "expense",
		"currency", "exchange", "fx", "hedging", "transfer", "cross-border",
		"banking", "lending", "fuel", "fleet", "rates", "fees",
		"pago", "pagos", "tarjeta", "factura", "divisa", "cambio",
		"transferencia", "banca", "tasa", "comision",
	},
	Intents: map[Intent]Bilingual{
		IntentGreeting: {
			EN: "Hello! I'm your Corpay assistant. I can help you with information about payment solutions, corporate cards, currency exchange, and our financial services. How can I assist you today?",
			ES: "¡Hola! Soy su asistente de Corpay. Puedo ayudarle con información sobre soluciones de pago, tarjetas corporativas, cambio de divisas y nuestros servicios financieros. ¿Cómo puedo ayudarle hoy?",
		},
		IntentHours: {
			EN: `**Customer Support Hours:**
• Monday-Friday: 8 a.m. - 8 p.m. EST
• Saturday-Sunday: Closed

*Note: Account managers may keep different hours; check your service agreement for dedicated contacts.*`,
			ES: `**Horario de Atención al Cliente:**
• Lunes-Viernes: 8 a.m. - 8 p.m. EST
• Sábado-Domingo: Cerrado

*Nota: Los gerentes de cuenta pueden tener horarios diferentes.*`,
		},
		IntentLocation: {
			EN: `Find your nearest Corpay office:
📍 **Office Locator:** [corpay.example.com/locations](https://corpay.example.com/locations)

With offices across North America, Europe, and Asia-Pacific, there's likely a Corpay office near you!`,
			ES: `Encuentre su oficina de Corpay más cercana:
📍 **Localizador de oficinas:** [corpay.example.com/ubicaciones](https://corpay.example.com/locations)

¡Con oficinas en América del Norte, Europa y Asia-Pacífico!`,
		},
		IntentPhone: {
			EN: `You can reach Corpay at:
📞 **Customer Service:** [1-800-266-7729](tel:18002667729)

**Available:**
• Monday-Friday: 8 AM - 8 PM EST

For account-specific questions, contact your dedicated account manager directly.`,
			ES: `Puede comunicarse con Corpay al:
📞 **Servicio al Cliente:** [1-800-266-7729](tel:18002667729)

**Disponible:**
• Lunes-Viernes: 8 AM - 8 PM EST`,
		},
		IntentInsurance: {
			EN: `Pricing and coverage vary by product and agreement:

• Transparent per-transaction pricing on payment processing
• No hidden fees on corporate card programs
• Competitive exchange rates on currency services

For a quote specific to your business, please contact our sales team or visit:
[Pricing & Plans](https://corpay.example.com/pricing)`,
			ES: `Los precios y la cobertura varían según el producto:

• Precios transparentes por transacción
• Sin comisiones ocultas en programas de tarjetas corporativas
• Tipos de cambio competitivos

Para una cotización específica, contacte a nuestro equipo de ventas.`,
		},
		IntentServices: {
			EN: `I can help you with information about Corpay Financial Services. Here are the main topics I can assist with:

💳 **Payment Solutions:**
• Accounts payable automation and invoice processing
• Payment processing and money transfer
• Virtual, corporate, and commercial card programs

🌍 **Global Payments:**
• International payments and cross-border transfers
• Foreign exchange and currency risk management
• Multi-currency accounts

🏦 **Financial Services:**
• Banking solutions and lending programs
• Fuel and fleet payment programs
• Business expense management

For specific questions about any of these topics, just ask! For example:
- "How does invoice automation work?"
- "Tell me about virtual cards"
- "What currencies do you support?"

If you need immediate assistance, you can contact Corpay directly at 1-800-266-7729 or visit https://corpay.example.com.`,
			ES: `Puedo ayudarte con información sobre Corpay Financial Services. Estos son los temas principales:

💳 **Soluciones de Pago:**
• Automatización de cuentas por pagar y procesamiento de facturas
• Procesamiento de pagos y transferencias de dinero
• Programas de tarjetas virtuales, corporativas y comerciales

🌍 **Pagos Globales:**
• Pagos internacionales y transferencias transfronterizas
• Cambio de divisas y gestión de riesgo cambiario
• Cuentas multidivisa

🏦 **Servicios Financieros:**
• Soluciones bancarias y programas de préstamos
• Programas de pago de combustible y flotas
• Gestión de gastos empresariales

Para preguntas específicas sobre cualquiera de estos temas, ¡solo pregunta!

Si necesitas asistencia inmediata, contacta a Corpay al 1-800-266-7729 o visita https://corpay.example.com.`,
		},
		IntentHelp: {
			EN: `I'm here to help you with questions about Corpay Financial Services. I can assist with:

• Payment solutions and processing
• Corporate and virtual card information
• International payments and currency exchange
• Financial services and banking solutions

What would you like to know about Corpay?`,
			ES: `Estoy aquí para ayudarle con preguntas sobre Corpay Financial Services. Puedo ayudarle con:

• Soluciones de pago y procesamiento
• Información sobre tarjetas corporativas y virtuales
• Pagos internacionales y cambio de divisas
• Servicios financieros y soluciones bancarias

¿Sobre qué le gustaría saber acerca de Corpay?`,
		},
	},
}

var pharmacyResponses = ResponseSet{
	DomainKeywords: []string{
		"vaccine", "vaccination", "covid", "flu", "shot",
		"medication", "prescription", "drug", "medicine",
		"screening", "test", "exam", "blood", "glucose",
		"wellness", "nutrition", "diet", "diabetes",
		"340b", "clinical trial",
		"vacuna", "medicamento", "receta", "medicina",
		"examen", "prueba", "bienestar", "nutricion",
	},
	Intents: map[Intent]Bilingual{
		IntentGreeting: {
			EN: "Hello! I'm your YourPharmacy Health Assistant. I can help you with information about vaccinations, medications, health screenings, and wellness services. How can I assist you today?",
			ES: "¡Hola! Soy su Asistente de Salud de YourPharmacy. Puedo ayudarle con información sobre vacunas, medicamentos, exámenes de salud y servicios de bienestar. ¿Cómo puedo ayudarle hoy?",
		},
		IntentHours: {
			EN: `**Customer Service Hours:**
• Monday-Friday: 7 a.m. - Midnight EST
• Saturday-Sunday: 7 a.m. - 9:30 p.m. EST

*Note: Individual pharmacy hours may vary by location. Check your local store for specific hours.*`,
			ES: `**Horario de Servicio al Cliente:**
• Lunes-Viernes: 7 a.m. - Medianoche EST
• Sábado-Domingo: 7 a.m. - 9:30 p.m. EST

*Nota: Los horarios de farmacia individuales pueden variar por ubicación.*`,
		},
		IntentLocation: {
			EN: `Find your nearest YourPharmacy location:
📍 **Store Locator:** [yourpharmacy.example.com/locations](https://yourpharmacy.example.com/locations)
📱 **Open in Maps:** [Find nearby](https://www.google.com/maps/search/?api=1&query=pharmacy+near+me)

With numerous locations across multiple states, there's likely a YourPharmacy near you!`,
			ES: `Encuentre su farmacia YourPharmacy más cercana:
📍 **Localizador de tiendas:** [yourpharmacy.example.com/tiendas](https://yourpharmacy.example.com/locations)
📱 **Abrir en Mapas:** [Buscar cerca](https://www.google.com/maps/search/?api=1&query=pharmacy+near+me)

¡Con numerosas ubicaciones en múltiples estados!`,
		},
		IntentPhone: {
			EN: `You can reach YourPharmacy Health at:
📞 **Customer Service:** [1-844-708-1821](tel:18447081821)

**Available:**
• Mon, Wed & Fri: 9 AM - 5:30 PM EST
• Tue & Thu: 10 AM - 6:30 PM EST

For pharmacy-specific questions, contact your local YourPharmacy directly.`,
			ES: `Puede comunicarse con YourPharmacy Health al:
📞 **Servicio al Cliente:** [1-844-708-1821](tel:18447081821)

**Disponible:**
• Lun, Mié y Vie: 9 AM - 5:30 PM EST
• Mar y Jue: 10 AM - 6:30 PM EST`,
		},
		IntentInsurance: {
			EN: `We accept most insurance plans and prescription discount cards:

• Medicare Part D
• Medicaid
• Most commercial insurance plans
• Prescription discount cards

For specific coverage questions, please contact your local pharmacy or visit:
[Insurance & Savings](https://yourpharmacy.example.com/insurance-savings)`,
			ES: `Aceptamos la mayoría de planes de seguro:

• Medicare Parte D
• Medicaid
• La mayoría de planes comerciales
• Tarjetas de descuento

Para preguntas específicas, contacte su farmacia local.`,
		},
		IntentServices: {
			EN: `I can help you with information about YourPharmacy Health services. Here are the main topics I can assist with:

🩹 **Health Services:**
• Vaccinations & immunizations (COVID-19, flu shots, routine vaccines)
• Health screenings & testing (biometric screenings, physicals, COVID testing)
• Medication services & pharmacy support (medication optimization, prescription management)

🥗 **Wellness Programs:**
• Food as Medicine programs (nutrition counseling, food prescriptions)
• Wellness screenings and preventive care services

🏥 **Healthcare Organizations:**
• 340B pharmacy solutions and contract services
• Clinical trial opportunities and research partnerships

For specific questions about any of these topics, just ask! For example:
- "Tell me about COVID vaccines"
- "What screenings do you offer?"
- "How does medication optimization work?"

If you need immediate assistance or want to schedule services, you can contact YourPharmacy Health directly at 1-844-708-1821 or visit https://yourpharmacy.example.com.`,
			ES: `Puedo ayudarte con información sobre los servicios de YourPharmacy Health. Estos son los temas principales:

🩹 **Servicios de Salud:**
• Vacunas e inmunizaciones (COVID-19, vacunas contra la gripe, vacunas de rutina)
• Exámenes de salud y pruebas (exámenes biométricos, exámenes físicos, pruebas de COVID)
• Servicios de medicamentos y apoyo farmacéutico

🥗 **Programas de Bienestar:**
• Programas de Comida como Medicina (asesoramiento nutricional)
• Exámenes de bienestar y servicios de atención preventiva

🏥 **Organizaciones de Salud:**
• Soluciones de farmacia 340B y servicios por contrato
• Oportunidades de ensayos clínicos

Para preguntas específicas sobre cualquiera de estos temas, ¡solo pregunta!

Si necesitas asistencia inmediata, contacta a YourPharmacy Health al 1-844-708-1821 o visita https://yourpharmacy.example.com.`,
		},
		IntentHelp: {
			EN: `I can help you with:
• Vaccination information and scheduling
• Pharmacy hours and locations
• Prescription and medication questions
• Health screenings and wellness programs
• Insurance and payment information

What would you like to know about?`,
			ES: `Puedo ayudarle con:
• Información sobre vacunas
• Horarios y ubicaciones de farmacias
• Preguntas sobre medicamentos
• Exámenes de salud y programas de bienestar
• Información sobre seguros

¿Qué le gustaría saber?`,
		},
	},
}
