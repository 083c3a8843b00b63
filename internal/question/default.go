package question

// DefaultCatalog is the built-in question set, used when no catalog
// file is configured. A handful per category is enough for play
// testing; production deployments ship a full YAML catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		"variety": {
			{Prompt: "ما هي عاصمة فرنسا؟", Truth: "باريس"},
			{Prompt: "كم عدد قارات العالم؟", Truth: "سبع"},
			{Prompt: "ما هو أطول نهر في العالم؟", Truth: "النيل"},
			{Prompt: "ما هي أكبر دولة عربية من حيث المساحة؟", Truth: "الجزائر"},
			{Prompt: "في أي سنة انتهت الحرب العالمية الثانية؟", Truth: "1945"},
			{Prompt: "ما هو الحيوان الملقب بسفينة الصحراء؟", Truth: "الجمل"},
		},
		"geography": {
			{Prompt: "ما هي عاصمة اليابان؟", Truth: "طوكيو"},
			{Prompt: "ما أكبر محيط في العالم؟", Truth: "الهادئ"},
			{Prompt: "في أي دولة يقع برج بيزا المائل؟", Truth: "إيطاليا"},
			{Prompt: "ما هي أصغر دولة في العالم؟", Truth: "الفاتيكان"},
		},
		"science": {
			{Prompt: "ما هو الرمز الكيميائي للذهب؟", Truth: "Au"},
			{Prompt: "كم عدد كواكب المجموعة الشمسية؟", Truth: "ثمانية"},
			{Prompt: "ما هو أسرع حيوان بري في العالم؟", Truth: "الفهد"},
			{Prompt: "ما العنصر الأكثر وفرة في الغلاف الجوي؟", Truth: "النيتروجين"},
		},
		"history": {
			{Prompt: "من هو القائد الذي فتح القسطنطينية؟", Truth: "محمد الفاتح"},
			{Prompt: "في أي مدينة وُلد الرسول ﷺ؟", Truth: "مكة"},
			{Prompt: "ما اسم أول جامعة في العالم؟", Truth: "القرويين"},
		},
		"sports": {
			{Prompt: "كم لاعبا في فريق كرة القدم؟", Truth: "أحد عشر"},
			{Prompt: "في أي دولة أقيم كأس العالم 2022؟", Truth: "قطر"},
			{Prompt: "كم مدة الشوط الواحد في كرة القدم بالدقائق؟", Truth: "45"},
		},
	}
}
