package topic

// DefaultKeywords returns a fresh copy of the built-in keyword list: diseases,
// symptoms and general medical vocabulary. Matching is by substring, so stems
// such as "allerg" or "vaccin" cover their inflected forms. Pain, ache and
// rash only appear in compound forms because the bare words sit inside
// "Spain", "paint", "cache" and "crash". "flu" still hits "influence"; the gate
// errs towards answering there.
func DefaultKeywords() []string {
	return []string{
		// general
		"health", "disease", "illness", "sick", "symptom", "infect", "medic",
		"doctor", "nurse", "hospital", "clinic", "treatment", "remedy", "remedies",
		"prevent", "vaccin", "immun", "hygiene", "sanitation", "nutrition", "diet",
		"epidemic", "pandemic", "outbreak", "first aid",

		// symptoms
		"fever", "cough", "cold", "flu", "sore throat", "headache", "migraine",
		"nausea", "vomit", "diarrhea", "diarrhoea", "constipation",
		"skin rash", "heat rash", "diaper rash", "nappy rash", "itching",
		"painful", "painkiller", "pain relief", "in pain", "chest pain",
		"back pain", "stomach pain", "abdominal pain", "joint pain",
		"stomach ache", "stomachache", "toothache", "earache", "backache",
		"body ache", "muscle ache", "cramp", "fatigue", "dizz", "swelling",
		"bleeding", "dehydrat", "insomnia", "breathless", "shortness of breath",
		"sneez", "runny nose", "chills",

		// conditions
		"allerg", "asthma", "diabetes", "hypertension", "blood pressure",
		"cholesterol", "heart attack", "stroke", "cancer", "tumor", "tumour",
		"malaria", "dengue", "cholera", "typhoid", "tuberculosis", "covid",
		"coronavirus", "measles", "mumps", "chickenpox", "pneumonia",
		"bronchitis", "sinus", "hepatitis", "jaundice", "anemia", "anaemia",
		"obesity", "thyroid", "arthritis", "eczema", "psoriasis", "ulcer",
		"kidney", "liver disease", "lung", "depression", "anxiety", "mental health",
		"pregnan", "fracture", "injury", "wound", "poison", "virus",
		"bacteria", "fungal", "parasite", "worms",
	}
}
