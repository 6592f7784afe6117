// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package property

import (
	"context"
	"sort"

	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/repository"
)

// MissingMandatoryProperties maps each mandatory key to the repositories among
// repos that do not define it. Keys nobody misses are omitted.
func (s *Service) MissingMandatoryProperties(ctx context.Context, repos []repository.Repository) (map[string][]repository.Repository, error) {
	result := make(map[string][]repository.Repository)
	mandatoryByNamespace := make(map[string][]string)

	for _, repo := range repos {
		mandatory, ok := mandatoryByNamespace[repo.Namespace]
		if !ok {
			var err error
			mandatory, err = s.mandatoryKeys(ctx, repo.Namespace)
			if err != nil {
				return nil, err
			}
			mandatoryByNamespace[repo.Namespace] = mandatory
		}
		if len(mandatory) == 0 {
			continue
		}

		defined, err := s.store.GetAll(ctx, repo.ID)
		if err != nil {
			return nil, storeFailed("get all", repo, err)
		}
		for _, key := range mandatory {
			if _, ok := defined[key]; !ok {
				result[key] = append(result[key], repo)
			}
		}
	}
	return result, nil
}

// MissingMandatoryPropertiesAll audits every repository.
func (s *Service) MissingMandatoryPropertiesAll(ctx context.Context) (map[string][]repository.Repository, error) {
	repos, err := s.repos.All(ctx)
	if err != nil {
		return nil, err
	}
	return s.MissingMandatoryProperties(ctx, repos)
}

// MissingMandatoryPropertiesForNamespace audits the repositories of namespace.
func (s *Service) MissingMandatoryPropertiesForNamespace(ctx context.Context, namespace string) (map[string][]repository.Repository, error) {
	repos, err := s.repos.ByNamespace(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return s.MissingMandatoryProperties(ctx, repos)
}

// MissingMandatoryPropertiesForRepository returns the sorted mandatory keys repo lacks.
func (s *Service) MissingMandatoryPropertiesForRepository(ctx context.Context, repo repository.Repository) ([]string, error) {
	missing, err := s.MissingMandatoryProperties(ctx, []repository.Repository{repo})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(missing))
	for key := range missing {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Service) mandatoryKeys(ctx context.Context, namespace string) ([]string, error) {
	keys, err := s.keys.AllPredefinedKeys(ctx, namespace)
	if err != nil {
		return nil, err
	}
	var mandatory []string
	for _, name := range predefined.SortedNames(keys) {
		if keys[name].EffectiveMode() == predefined.ModeMandatory {
			mandatory = append(mandatory, name)
		}
	}
	return mandatory, nil
}
