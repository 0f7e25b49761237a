package util

const DateFormat = "2006-01-02"

const StorageMinio = "minio"

// 分析接口的默认查询参数
const (
	DefaultTrajectoryWindow  = 90 // 天
	DefaultForecastHorizon   = 4  // 周
	DefaultStudyLookbackDays = 30
)
