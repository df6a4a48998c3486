package pricing

// Result texts written into station schedule columns in place of a schedule.
const (
	TextNoEnergyPrice  = "未匹配到价格"
	TextNoTierPrice    = "无对应电价"
	TextNoServicePrice = "未找到服务费价格"
	TextFlatFeeMissing = "一口价缺失"
	TextMergeFailed    = "未能成功合并电费与服务费，请检查源数据。"
	UnitPerKWh         = "元/度"
	FullDayRange       = "0:00 - 24:00"
	TimeOfUseDisabled  = "否"
)
