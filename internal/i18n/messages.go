package i18n

import "golang.org/x/text/language"

var bundled = map[language.Tag]map[string]string{
	language.Arabic: {
		// filters
		"Company":                      "الشركة",
		"Filter Based On":              "التصفية على أساس",
		"Fiscal Year":                  "السنة المالية",
		"Date Range":                   "نطاق التاريخ",
		"Start Date":                   "تاريخ البدء",
		"End Date":                     "تاريخ الانتهاء",
		"Start Year":                   "سنة البدء",
		"End Year":                     "سنة الانتهاء",
		"Periodicity":                  "الدورية",
		"Monthly":                      "شهري",
		"Quarterly":                    "ربع سنوي",
		"Half-Yearly":                  "نصف سنوي",
		"Yearly":                       "سنوي",
		"Currency":                     "العملة",
		"Cost Center":                  "مركز التكلفة",
		"Project":                      "المشروع",
		"Finance Book":                 "دفتر التمويل",
		"Select View":                  "اختر العرض",
		"Report View":                  "عرض التقرير",
		"Growth View":                  "عرض النمو",
		"Margin View":                  "عرض الهامش",
		"Include Default FB Entries":   "تضمين قيود دفتر التمويل الافتراضي",
		"Include Default Book Entries": "تضمين قيود الدفتر الافتراضي",
		"Accumulated Values":           "القيم المتراكمة",
		// rows
		"Account":                   "الحساب",
		"Total":                     "الإجمالي",
		"Income":                    "الإيرادات",
		"Expense":                   "المصروفات",
		"Credit":                    "دائن",
		"Debit":                     "مدين",
		"Total %s (%s)":             "إجمالي %s (%s)",
		"Cost of Goods Sold (COGS)": "تكلفة البضاعة المباعة",
		"Total COGS":                "إجمالي تكلفة البضاعة المباعة",
		"Gross Profit":              "إجمالي الربح",
		"Total OPEX":                "إجمالي المصروفات التشغيلية",
		"Profit from Operations":    "الربح من العمليات",
		"Taxes and Zakat":           "الضرائب والزكاة",
		"Net Profit for the year":   "صافي الربح للسنة",
		"Profit and Loss Statement": "قائمة الأرباح والخسائر",
		// summary
		"Total Income This Year":  "إجمالي الإيرادات هذا العام",
		"Total Expense This Year": "إجمالي المصروفات هذا العام",
		"Profit This Year":        "الربح هذا العام",
		"Total Income":            "إجمالي الإيرادات",
		"Total Expense":           "إجمالي المصروفات",
		"Net Profit":              "صافي الربح",
	},
}
