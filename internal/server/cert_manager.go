package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cvmatch/internal/config"
	cvmatchErrors "cvmatch/internal/errors"
	"cvmatch/internal/observability"

	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// VaultClientInterface defines the Vault operations needed for certificate reloads
type VaultClientInterface interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// CertificateManager manages TLS certificates with auto-reload from files
// and Vault. File changes are picked up through fsnotify; Vault secrets are
// polled by version.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	caCertPool       *x509.CertPool
	serverCertExpiry time.Time
	lastReloadTime   time.Time

	config      *config.TLSConfig
	autoReload  *config.AutoReloadConfig
	vaultClient VaultClientInterface

	fsWatcher     *fsnotify.Watcher
	debounceTimer *time.Timer
	stopChan      chan struct{}
	stopOnce      sync.Once

	vaultLastVersion int64

	om     *observability.Manager
	logger *cvmatchErrors.Logger

	reloadCount        int64
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadSuccess  bool
	lastReloadError    string
}

// CertificateMetrics holds counters about certificate reload operations
type CertificateMetrics struct {
	ReloadCount        int64     `json:"reloadCount"`
	ReloadSuccessCount int64     `json:"reloadSuccessCount"`
	ReloadFailureCount int64     `json:"reloadFailureCount"`
	LastReloadTime     time.Time `json:"lastReloadTime"`
	LastReloadSuccess  bool      `json:"lastReloadSuccess"`
	LastReloadError    string    `json:"lastReloadError,omitempty"`
}

// NewCertificateManager creates a certificate manager
func NewCertificateManager(tlsConfig *config.TLSConfig, autoReload *config.AutoReloadConfig, vaultClient VaultClientInterface, om *observability.Manager, logger *cvmatchErrors.Logger) *CertificateManager {
	return &CertificateManager{
		config:      tlsConfig,
		autoReload:  autoReload,
		vaultClient: vaultClient,
		om:          om,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start loads the initial certificates and starts the configured watchers
func (cm *CertificateManager) Start() error {
	if err := cm.loadCertificates(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	cm.startExpiryMonitoring()

	if err := cm.startFileWatcher(); err != nil {
		return err
	}

	cm.startVaultPoller()

	return nil
}

// Stop stops all watcher goroutines
func (cm *CertificateManager) Stop() error {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.debounceTimer != nil {
		cm.debounceTimer.Stop()
	}
	if cm.fsWatcher != nil {
		if err := cm.fsWatcher.Close(); err != nil {
			cm.logger.LogError(err, "Failed to close certificate file watcher")
		}
		cm.fsWatcher = nil
	}

	cm.logger.Info("Certificate manager stopped")
	return nil
}

// GetServerCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}

	if time.Now().After(cm.serverCertExpiry) {
		cm.logger.LogError(fmt.Errorf("server certificate expired"), "Server certificate expired",
			"expiry", cm.serverCertExpiry,
			"server_name", hello.ServerName)
		return nil, fmt.Errorf("server certificate expired")
	}

	return cm.serverCert, nil
}

// GetCACertPool returns the current CA certificate pool
func (cm *CertificateManager) GetCACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// VerifyPeerCertificate verifies peer certificates against the current CA pool
func (cm *CertificateManager) VerifyPeerCertificate(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("no peer certificates provided")
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("failed to parse peer certificate: %w", err)
	}

	pool := cm.GetCACertPool()
	if pool == nil {
		return fmt.Errorf("no CA certificate pool available")
	}

	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool}); err != nil {
		return fmt.Errorf("peer certificate verification failed: %w", err)
	}
	return nil
}

// ReloadCertificates manually triggers a certificate reload
func (cm *CertificateManager) ReloadCertificates() error {
	return cm.loadCertificates()
}

// CheckExpiry returns the time until the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics returns certificate reload counters
func (cm *CertificateManager) GetMetrics() *CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return &CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadSuccessCount: cm.reloadSuccessCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadSuccess:  cm.lastReloadSuccess,
		LastReloadError:    cm.lastReloadError,
	}
}

// loadCertificates loads the server certificate and CA pool from files or content
func (cm *CertificateManager) loadCertificates() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var cert tls.Certificate
	var err error
	if cm.config.CertContent != "" && cm.config.KeyContent != "" {
		cert, err = tls.X509KeyPair([]byte(cm.config.CertContent), []byte(cm.config.KeyContent))
	} else {
		cert, err = tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
	}
	if err != nil {
		cm.recordReload(false, err)
		return fmt.Errorf("failed to load server certificate: %w", err)
	}

	if len(cert.Certificate) > 0 {
		parsed, parseErr := x509.ParseCertificate(cert.Certificate[0])
		if parseErr != nil {
			cm.recordReload(false, parseErr)
			return fmt.Errorf("failed to parse server certificate: %w", parseErr)
		}
		cm.serverCertExpiry = parsed.NotAfter
	}

	if cm.config.Mode == "mutual" {
		pool, poolErr := cm.loadCAPool()
		if poolErr != nil {
			cm.recordReload(false, poolErr)
			return poolErr
		}
		cm.caCertPool = pool
	}

	cm.serverCert = &cert
	cm.lastReloadTime = time.Now()
	cm.recordReload(true, nil)

	cm.logger.Info("Certificates loaded",
		"expiry", cm.serverCertExpiry,
		"mode", cm.config.Mode)
	return nil
}

// loadCAPool loads the CA certificate pool for mutual TLS
func (cm *CertificateManager) loadCAPool() (*x509.CertPool, error) {
	var caCert []byte
	var err error

	if cm.config.CAContent != "" {
		caCert = []byte(cm.config.CAContent)
	} else if cm.config.CAFile != "" {
		caCert, err = os.ReadFile(cm.config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
	}

	if len(caCert) == 0 {
		return nil, fmt.Errorf("no CA certificate configured for mutual TLS")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}

// startFileWatcher watches certificate files for changes when file-based
// certificates and the file watcher are both configured.
func (cm *CertificateManager) startFileWatcher() error {
	if cm.autoReload == nil || !cm.autoReload.FileWatcher.Enabled {
		return nil
	}
	if cm.config.CertFile == "" && cm.config.KeyFile == "" && cm.config.CAFile == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create certificate file watcher: %w", err)
	}
	cm.fsWatcher = watcher

	files := cm.watchedFiles()
	for _, file := range files {
		// Watch the directory too so atomic renames are caught
		if err := watcher.Add(file); err != nil {
			cm.logger.Warn("Failed to watch certificate file", "file", file, "error", err)
		}
		if err := watcher.Add(filepath.Dir(file)); err != nil {
			cm.logger.Warn("Failed to watch certificate directory",
				"directory", filepath.Dir(file), "error", err)
		}
	}

	go cm.watchLoop(files)

	cm.logger.Info("Certificate file watcher started",
		"files", files,
		"debounce_delay", cm.debounceDelay())
	return nil
}

// watchedFiles returns the configured certificate file paths
func (cm *CertificateManager) watchedFiles() []string {
	var files []string
	for _, file := range []string{cm.config.CertFile, cm.config.KeyFile, cm.config.CAFile} {
		if file != "" {
			files = append(files, file)
		}
	}
	return files
}

func (cm *CertificateManager) debounceDelay() time.Duration {
	if cm.autoReload != nil && cm.autoReload.FileWatcher.DebounceDelay > 0 {
		return cm.autoReload.FileWatcher.DebounceDelay
	}
	return time.Second
}

// watchLoop processes file system events with debouncing
func (cm *CertificateManager) watchLoop(files []string) {
	for {
		select {
		case event, ok := <-cm.fsWatcher.Events:
			if !ok {
				return
			}
			if cm.isWatchedEvent(event, files) {
				cm.scheduleReload()
			}
		case err, ok := <-cm.fsWatcher.Errors:
			if !ok {
				return
			}
			cm.logger.LogError(err, "Certificate file watcher error")
		case <-cm.stopChan:
			return
		}
	}
}

// isWatchedEvent reports whether the event concerns a watched certificate file
func (cm *CertificateManager) isWatchedEvent(event fsnotify.Event, files []string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	for _, file := range files {
		if event.Name == file || filepath.Base(event.Name) == filepath.Base(file) {
			return true
		}
	}
	return false
}

// scheduleReload debounces rapid event bursts into a single reload
func (cm *CertificateManager) scheduleReload() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.debounceTimer != nil {
		cm.debounceTimer.Stop()
	}
	cm.debounceTimer = time.AfterFunc(cm.debounceDelay(), func() {
		cm.logger.Info("Certificate files changed, reloading")
		if err := cm.loadCertificates(); err != nil {
			cm.logger.LogError(err, "Failed to reload certificates")
		}
	})
}

// startVaultPoller polls Vault for new certificate versions when content-based
// certificates and the Vault watcher are both configured.
func (cm *CertificateManager) startVaultPoller() {
	if cm.autoReload == nil || !cm.autoReload.VaultWatcher.Enabled {
		return
	}
	if cm.config.CertContent == "" && cm.config.KeyContent == "" && cm.config.CAContent == "" {
		return
	}
	if cm.vaultClient == nil {
		cm.logger.Warn("Vault certificate watcher enabled but Vault client is nil")
		return
	}

	interval := cm.autoReload.VaultWatcher.PollInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cm.pollVault()
			case <-cm.stopChan:
				return
			}
		}
	}()

	cm.logger.Info("Vault certificate watcher started",
		"secret_path", cm.autoReload.VaultWatcher.SecretPath,
		"poll_interval", interval)
}

// pollVault checks the secret version and reloads certificates on change
func (cm *CertificateManager) pollVault() {
	secret, err := cm.vaultClient.GetSecretV2(cm.autoReload.VaultWatcher.SecretPath)
	if err != nil {
		cm.logger.LogError(err, "Failed to poll Vault for certificate updates")
		return
	}

	cm.mu.Lock()
	if secret.Version <= cm.vaultLastVersion {
		cm.mu.Unlock()
		return
	}
	cm.vaultLastVersion = secret.Version

	if cert, ok := secret.Data["cert"].(string); ok && cert != "" {
		cm.config.CertContent = cert
	}
	if key, ok := secret.Data["key"].(string); ok && key != "" {
		cm.config.KeyContent = key
	}
	if ca, ok := secret.Data["ca"].(string); ok && ca != "" {
		cm.config.CAContent = ca
	}
	cm.mu.Unlock()

	cm.logger.Info("Vault certificate secret changed, reloading",
		"version", secret.Version)
	if err := cm.loadCertificates(); err != nil {
		cm.logger.LogError(err, "Failed to reload certificates from Vault")
	}
}

// recordReload updates counters and OpenTelemetry metrics. Callers hold cm.mu.
func (cm *CertificateManager) recordReload(success bool, err error) {
	cm.reloadCount++
	if success {
		cm.reloadSuccessCount++
		cm.lastReloadSuccess = true
		cm.lastReloadError = ""
	} else {
		cm.reloadFailureCount++
		cm.lastReloadSuccess = false
		if err != nil {
			cm.lastReloadError = err.Error()
		}
	}

	if cm.om == nil {
		return
	}
	metrics := cm.om.GetMetrics()
	if metrics == nil {
		return
	}

	ctx := context.Background()
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.CertReloadCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("cert_type", "server")))

	if !cm.serverCertExpiry.IsZero() {
		metrics.CertExpiryTime.Record(ctx, time.Until(cm.serverCertExpiry).Seconds(),
			metric.WithAttributes(attribute.String("cert_type", "server")))
	}
}

// startExpiryMonitoring periodically refreshes the expiry gauge
func (cm *CertificateManager) startExpiryMonitoring() {
	if cm.om == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cm.mu.RLock()
				expiry := cm.serverCertExpiry
				cm.mu.RUnlock()
				if expiry.IsZero() {
					continue
				}
				if metrics := cm.om.GetMetrics(); metrics != nil {
					metrics.CertExpiryTime.Record(context.Background(),
						time.Until(expiry).Seconds(),
						metric.WithAttributes(attribute.String("cert_type", "server")))
				}
			case <-cm.stopChan:
				return
			}
		}
	}()
}
