package aws

import (
	"context"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/rioslabs/reaper/providers"
	"github.com/rioslabs/reaper/types"
)

// nonTerminalStates filters the inventory server-side; terminated instances
// are never candidates.
var nonTerminalStates = []string{
	string(types.StatePending),
	string(types.StateRunning),
	string(types.StateStopping),
	string(types.StateStopped),
	string(types.StateShuttingDown),
}

// ListInstances returns all non-terminated instances within scope,
// paginating through DescribeInstances. Throttled pages are retried with
// backoff; any other failure aborts the listing, since a partial inventory
// must never be acted on.
func (p *Provider) ListInstances(ctx context.Context, scope providers.Scope) ([]types.InstanceRecord, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: scopeFilters(scope),
	}

	var records []types.InstanceRecord
	paginator := ec2.NewDescribeInstancesPaginator(p.client, input)

	for paginator.HasMorePages() {
		var page *ec2.DescribeInstancesOutput
		err := p.retry.Do(ctx, func() error {
			var pageErr error
			page, pageErr = paginator.NextPage(ctx)
			return classify("DescribeInstances", "", pageErr)
		})
		if err != nil {
			return nil, err
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				records = append(records, convertInstance(instance))
			}
		}
	}

	return records, nil
}

// TerminateInstance terminates one instance. A not-found response means the
// instance is already gone, which is the desired state.
func (p *Provider) TerminateInstance(ctx context.Context, id string) error {
	_, err := p.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{id},
	})
	if err == nil {
		return nil
	}

	classified := classify("TerminateInstances", id, err)
	if providers.IsNotFound(classified) {
		return nil
	}
	return classified
}

// scopeFilters builds server-side DescribeInstances filters for the
// configured network scope plus the non-terminal state filter.
func scopeFilters(scope providers.Scope) []ec2types.Filter {
	filters := []ec2types.Filter{
		{
			Name:   awssdk.String("instance-state-name"),
			Values: nonTerminalStates,
		},
	}

	if scope.VPCID != "" {
		filters = append(filters, ec2types.Filter{
			Name:   awssdk.String("vpc-id"),
			Values: []string{scope.VPCID},
		})
	}
	if len(scope.SubnetIDs) > 0 {
		filters = append(filters, ec2types.Filter{
			Name:   awssdk.String("subnet-id"),
			Values: scope.SubnetIDs,
		})
	}

	return filters
}

// convertInstance maps an EC2 instance to an InstanceRecord snapshot.
func convertInstance(instance ec2types.Instance) types.InstanceRecord {
	rec := types.InstanceRecord{
		ID:         awssdk.ToString(instance.InstanceId),
		VPCID:      awssdk.ToString(instance.VpcId),
		SubnetID:   awssdk.ToString(instance.SubnetId),
		LaunchTime: safeTime(instance.LaunchTime),
		Tags:       convertTags(instance.Tags),
	}
	if instance.State != nil {
		rec.State = types.InstanceState(instance.State.Name)
	}
	return rec
}

func convertTags(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[awssdk.ToString(tag.Key)] = awssdk.ToString(tag.Value)
	}
	return out
}

func safeTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

var _ providers.ComputeProvider = (*Provider)(nil)
