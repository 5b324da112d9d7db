package app

import (
	"fmt"

	authzDomain "github.com/allisson/busguard/internal/authz/domain"
	authzHTTP "github.com/allisson/busguard/internal/authz/http"
	authzUseCase "github.com/allisson/busguard/internal/authz/usecase"
)

// AuthzUseCase returns the authorization use case.
func (c *Container) AuthzUseCase() (authzUseCase.AuthzUseCase, error) {
	var err error
	c.authzUCInit.Do(func() {
		c.authzUC, err = c.initAuthzUseCase()
		if err != nil {
			c.initErrors["authzUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authzUseCase"]; exists {
		return nil, storedErr
	}
	return c.authzUC, nil
}

// AuthzHandler returns the HTTP handler for authorization decisions.
func (c *Container) AuthzHandler() (*authzHTTP.AuthzHandler, error) {
	var err error
	c.authzHandlerInit.Do(func() {
		var uc authzUseCase.AuthzUseCase
		uc, err = c.AuthzUseCase()
		if err != nil {
			c.initErrors["authzHandler"] = err
			return
		}
		c.authzHandler = authzHTTP.NewAuthzHandler(uc, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authzHandler"]; exists {
		return nil, storedErr
	}
	return c.authzHandler, nil
}

// initAuthzUseCase creates the authorization use case wired to the permission
// manager, the peer trust resolver, and the decision recorder.
func (c *Container) initAuthzUseCase() (authzUseCase.AuthzUseCase, error) {
	logger := c.Logger()

	securityUC, err := c.SecurityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get security use case for authz use case: %w", err)
	}

	policyUC, err := c.PolicyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy use case for authz use case: %w", err)
	}

	peerUC, err := c.PeerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get peer use case for authz use case: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for authz use case: %w", err)
	}

	manager := authzDomain.NewPermissionManager(
		newEngineState(securityUC, policyUC),
		peerUC,
		c.config.StrictGetAllOutgoing,
		logger,
	)

	useCase := authzUseCase.NewAuthzUseCase(manager, peerUC, auditUC, logger)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for authz use case: %w", err)
	}

	return authzUseCase.NewAuthzUseCaseWithMetrics(useCase, businessMetrics), nil
}
