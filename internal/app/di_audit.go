package app

import (
	"fmt"

	auditHTTP "github.com/allisson/busguard/internal/audit/http"
	auditRepository "github.com/allisson/busguard/internal/audit/repository"
	auditService "github.com/allisson/busguard/internal/audit/service"
	auditUseCase "github.com/allisson/busguard/internal/audit/usecase"
)

// DecisionSigner returns the decision log signing service.
func (c *Container) DecisionSigner() auditService.DecisionSigner {
	c.decisionSignerInit.Do(func() {
		c.decisionSigner = auditService.NewDecisionSigner()
	})
	return c.decisionSigner
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepoInit.Do(func() {
		c.auditLogRepo, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// AuditUseCase returns the audit use case.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUCInit.Do(func() {
		c.auditUC, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUC, nil
}

// AuditLogHandler returns the HTTP handler for audit log operations.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		var uc auditUseCase.AuditUseCase
		uc, err = c.AuditUseCase()
		if err != nil {
			c.initErrors["auditLogHandler"] = err
			return
		}
		c.auditLogHandler = auditHTTP.NewAuditLogHandler(uc, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

// initAuditLogRepository creates the audit log repository instance.
func (c *Container) initAuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	auditLogRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit use case: %w", err)
	}

	signingSecret, err := c.auditSigningSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing secret for audit use case: %w", err)
	}

	return auditUseCase.NewAuditUseCase(auditLogRepo, c.DecisionSigner(), signingSecret), nil
}
