// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	import "github.com/yeisme/artvault/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.ArtifactUploads.Inc()
//	metrics.ArtifactUploadBytes.Add(1024)
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/artvault/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ArtifactUploads 成功入库的制品数.
	ArtifactUploads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artvault_artifact_uploads_total",
			Help: "Total number of artifacts committed by the ingestion pipeline",
		},
	)

	// ArtifactUploadBytes 成功写入磁盘的制品字节数.
	ArtifactUploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artvault_artifact_upload_bytes_total",
			Help: "Total bytes of artifact content written to the vault",
		},
	)

	// IngestRollbacks 触发补偿回滚的上传次数.
	IngestRollbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artvault_ingest_rollbacks_total",
			Help: "Total number of uploads unwound by the rollback protocol",
		},
	)

	// ArtifactDeletions 删除的制品记录数.
	ArtifactDeletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artvault_artifact_deletions_total",
			Help: "Total number of artifact records deleted",
		},
	)

	// OrphanFilesSwept 清扫任务删除的孤儿文件数.
	OrphanFilesSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artvault_orphan_files_swept_total",
			Help: "Total number of orphaned vault files removed by the sweeper",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter, RequestDuration,
		ArtifactUploads, ArtifactUploadBytes, IngestRollbacks,
		ArtifactDeletions, OrphanFilesSwept,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
