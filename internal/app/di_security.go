package app

import (
	"context"
	"fmt"

	securityHTTP "github.com/allisson/busguard/internal/security/http"
	securityRepository "github.com/allisson/busguard/internal/security/repository"
	securityService "github.com/allisson/busguard/internal/security/service"
	securityUseCase "github.com/allisson/busguard/internal/security/usecase"
)

// PasscodeService returns the claim passcode hashing service.
func (c *Container) PasscodeService() securityService.PasscodeService {
	c.passcodeServiceInit.Do(func() {
		c.passcodeService = securityService.NewPasscodeService()
	})
	return c.passcodeService
}

// IdentityKeyService returns the device identity key service.
func (c *Container) IdentityKeyService() (securityService.IdentityKeyService, error) {
	var err error
	c.identityKeyServiceInit.Do(func() {
		c.identityKeyService, err = securityService.NewIdentityKeyService(context.Background(), c.config.KeeperKeyURI)
		if err != nil {
			c.initErrors["identityKeyService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityKeyService"]; exists {
		return nil, storedErr
	}
	return c.identityKeyService, nil
}

// SecurityStateRepository returns the security state repository based on database driver.
func (c *Container) SecurityStateRepository() (securityUseCase.SecurityStateRepository, error) {
	var err error
	c.securityStateRepoInit.Do(func() {
		c.securityStateRepo, err = c.initSecurityStateRepository()
		if err != nil {
			c.initErrors["securityStateRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["securityStateRepo"]; exists {
		return nil, storedErr
	}
	return c.securityStateRepo, nil
}

// SecurityUseCase returns the security use case.
func (c *Container) SecurityUseCase() (securityUseCase.SecurityUseCase, error) {
	var err error
	c.securityUCInit.Do(func() {
		c.securityUC, err = c.initSecurityUseCase()
		if err != nil {
			c.initErrors["securityUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["securityUseCase"]; exists {
		return nil, storedErr
	}
	return c.securityUC, nil
}

// SecurityHandler returns the HTTP handler for security operations.
func (c *Container) SecurityHandler() (*securityHTTP.SecurityHandler, error) {
	var err error
	c.securityHandlerInit.Do(func() {
		var uc securityUseCase.SecurityUseCase
		uc, err = c.SecurityUseCase()
		if err != nil {
			c.initErrors["securityHandler"] = err
			return
		}
		c.securityHandler = securityHTTP.NewSecurityHandler(uc, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["securityHandler"]; exists {
		return nil, storedErr
	}
	return c.securityHandler, nil
}

// initSecurityStateRepository creates the security state repository instance.
func (c *Container) initSecurityStateRepository() (securityUseCase.SecurityStateRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for security state repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return securityRepository.NewMySQLSecurityRepository(db), nil
	case "postgres":
		return securityRepository.NewPostgreSQLSecurityRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSecurityUseCase creates the security use case with all its dependencies.
func (c *Container) initSecurityUseCase() (securityUseCase.SecurityUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for security use case: %w", err)
	}

	stateRepo, err := c.SecurityStateRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get security state repository for security use case: %w", err)
	}

	policyUC, err := c.PolicyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy use case for security use case: %w", err)
	}

	identityService, err := c.IdentityKeyService()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity key service for security use case: %w", err)
	}

	return securityUseCase.NewSecurityUseCase(
		txManager,
		stateRepo,
		policyUC,
		c.PasscodeService(),
		identityService,
	), nil
}
